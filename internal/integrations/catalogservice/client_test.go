package catalogservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPackage_KeepsRawSnapshot(t *testing.T) {
	body := `{"id":7,"eventId":3,"serviceId":2,"name":"Gold","price":10000,"active":true,"features":["album"]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/packages/7", r.URL.Path)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	pkg, err := NewClient(srv.URL, time.Second).GetPackage(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), pkg.ID)
	assert.Equal(t, int64(3), pkg.EventID)
	assert.Equal(t, int64(10000), pkg.Price)
	assert.Equal(t, "INR", pkg.Currency)
	assert.JSONEq(t, body, string(pkg.Raw))
}

func TestGetPackage_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		err    error
	}{
		{name: "not found", status: http.StatusNotFound, err: ErrPackageNotFound},
		{name: "inactive", status: http.StatusOK, body: `{"id":7,"price":100,"active":false}`, err: ErrPackageInactive},
		{name: "zero price", status: http.StatusOK, body: `{"id":7,"price":0,"active":true}`, err: ErrInvalidResponse},
		{name: "price too large", status: http.StatusOK, body: `{"id":7,"price":9000000000000000000,"active":true}`, err: ErrInvalidResponse},
		{name: "server error", status: http.StatusBadGateway, body: "oops", err: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).GetPackage(context.Background(), 7)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
