package booking_wizard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-EventBooking/internal/api/middleware"
	"github.com/m04kA/SMC-EventBooking/internal/domain"
	wizardFlow "github.com/m04kA/SMC-EventBooking/internal/usecase/wizard_flow"
	"github.com/m04kA/SMC-EventBooking/internal/wizard"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) view(args mock.Arguments) (*wizardFlow.View, error) {
	v, _ := args.Get(0).(*wizardFlow.View)
	return v, args.Error(1)
}

func (m *mockUseCase) Start(ctx context.Context, req *wizardFlow.StartRequest) (*wizardFlow.View, error) {
	return m.view(m.Called(ctx, req))
}

func (m *mockUseCase) Get(ctx context.Context, wizardID string, userID int64) (*wizardFlow.View, error) {
	return m.view(m.Called(ctx, wizardID, userID))
}

func (m *mockUseCase) Discard(ctx context.Context, wizardID string, userID int64) error {
	return m.Called(ctx, wizardID, userID).Error(0)
}

func (m *mockUseCase) SetFields(ctx context.Context, req *wizardFlow.FieldsRequest) (*wizardFlow.View, error) {
	return m.view(m.Called(ctx, req))
}

func (m *mockUseCase) Next(ctx context.Context, wizardID string, userID int64) (*wizardFlow.View, error) {
	return m.view(m.Called(ctx, wizardID, userID))
}

func (m *mockUseCase) Previous(ctx context.Context, wizardID string, userID int64) (*wizardFlow.View, error) {
	return m.view(m.Called(ctx, wizardID, userID))
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func router(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/wizards", h.Start).Methods(http.MethodPost)
	r.HandleFunc("/wizards/{wizardId}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/wizards/{wizardId}", h.Discard).Methods(http.MethodDelete)
	r.HandleFunc("/wizards/{wizardId}/fields", h.SetFields).Methods(http.MethodPatch)
	r.HandleFunc("/wizards/{wizardId}/next", h.Next).Methods(http.MethodPost)
	r.HandleFunc("/wizards/{wizardId}/previous", h.Previous).Methods(http.MethodPost)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithActor(req.Context(), domain.Actor{UserID: 42, Role: domain.RoleClient}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func sampleView(step string) *wizardFlow.View {
	return &wizardFlow.View{
		ID:          "wiz-1",
		Step:        step,
		IsFirstStep: step == domain.StepDynamicFields.String(),
		FormTitle:   "Wedding details",
		Controls: []wizardFlow.Control{
			{Name: "theme", Label: "Theme", Kind: "select", Required: true, Options: []string{"royal", "rustic"}},
		},
		FormValues: map[string]interface{}{},
		PackageID:  7,
		UpdatedAt:  time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStart(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Start", mock.Anything, &wizardFlow.StartRequest{UserID: 42, PackageID: 7}).
		Return(sampleView(domain.StepDynamicFields.String()), nil)
	uc.On("Start", mock.Anything, &wizardFlow.StartRequest{UserID: 42, PackageID: 8}).
		Return(nil, wizardFlow.ErrPackageNotFound)

	r := router(NewHandler(uc, nopLogger{}))

	rec := do(r, http.MethodPost, "/wizards", `{"packageId":7}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var body WizardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "wiz-1", body.ID)
	assert.True(t, body.IsFirstStep)
	require.Len(t, body.Controls, 1)
	assert.Equal(t, "select", body.Controls[0].Kind)
	assert.Equal(t, []string{}, body.PassedSteps)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/wizards", `{"packageId":8}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/wizards", `{"packageId":0}`).Code)
}

func TestNext_InvalidStepReturnsMissingFields(t *testing.T) {
	view := sampleView(domain.StepDynamicFields.String())
	view.Missing = []string{"groomName"}

	uc := &mockUseCase{}
	uc.On("Next", mock.Anything, "wiz-1", int64(42)).Return(view, wizard.ErrStepInvalid)

	rec := do(router(NewHandler(uc, nopLogger{})), http.MethodPost, "/wizards/wiz-1/next", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body InvalidStepResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Wizard)
	assert.Equal(t, []string{"groomName"}, body.Wizard.Missing)
	assert.Equal(t, msgStepInvalid, body.Error)
}

func TestSetFields(t *testing.T) {
	scroll := 120
	uc := &mockUseCase{}
	uc.On("SetFields", mock.Anything, &wizardFlow.FieldsRequest{
		WizardID: "wiz-1",
		UserID:   42,
		Section:  "dynamicFields",
		Values:   map[string]interface{}{"theme": "royal"},
		Scroll:   &scroll,
	}).Return(sampleView(domain.StepDynamicFields.String()), nil)
	uc.On("SetFields", mock.Anything, mock.MatchedBy(func(req *wizardFlow.FieldsRequest) bool {
		return req.Section == "payment"
	})).Return(nil, wizard.ErrSectionNotActive)

	r := router(NewHandler(uc, nopLogger{}))

	rec := do(r, http.MethodPatch, "/wizards/wiz-1/fields", `{"section":"dynamicFields","values":{"theme":"royal"},"scrollOffset":120}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(r, http.MethodPatch, "/wizards/wiz-1/fields", `{"section":"payment","values":{"consentTerms":true}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrors(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Get", mock.Anything, "gone", int64(42)).Return(nil, wizard.ErrWizardNotFound)
	uc.On("Get", mock.Anything, "other", int64(42)).Return(nil, wizard.ErrAccessDenied)
	uc.On("Previous", mock.Anything, "wiz-1", int64(42)).Return(nil, wizard.ErrAlreadyFirstStep)
	uc.On("Discard", mock.Anything, "wiz-1", int64(42)).Return(nil)

	r := router(NewHandler(uc, nopLogger{}))

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/wizards/gone", "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/wizards/other", "").Code)
	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/wizards/wiz-1/previous", "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/wizards/wiz-1", "").Code)
}
