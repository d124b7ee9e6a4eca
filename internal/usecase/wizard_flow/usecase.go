package wizard_flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	catalogClient "github.com/m04kA/SMC-EventBooking/internal/integrations/catalogservice"
	formClient "github.com/m04kA/SMC-EventBooking/internal/integrations/formservice"
	"github.com/m04kA/SMC-EventBooking/internal/wizard"
)

// UseCase запуск мастера бронирования и работа с его шагами
type UseCase struct {
	store   *wizard.Store
	catalog CatalogClient
	forms   FormClient
	logger  Logger
	now     func() time.Time
	newID   func() string
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(store *wizard.Store, catalog CatalogClient, forms FormClient, logger Logger) *UseCase {
	return &UseCase{
		store:   store,
		catalog: catalog,
		forms:   forms,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Start создает мастер для выбранного пакета.
// Пакет и форма мероприятия загружаются один раз и дальше не меняются
func (uc *UseCase) Start(ctx context.Context, req *StartRequest) (*View, error) {
	uc.logger.Info("StartWizard: user=%d, package=%d", req.UserID, req.PackageID)

	if req.UserID <= 0 || req.PackageID <= 0 {
		return nil, fmt.Errorf("%w: userID and packageID must be positive", ErrInvalidInput)
	}

	pkg, err := uc.catalog.GetPackage(ctx, req.PackageID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrPackageNotFound) || errors.Is(err, catalogClient.ErrPackageInactive) {
			uc.logger.Warn("StartWizard: package id=%d is not available: %v", req.PackageID, err)
			return nil, ErrPackageNotFound
		}
		uc.logger.Error("StartWizard: failed to get package id=%d: %v", req.PackageID, err)
		return nil, fmt.Errorf("%w: failed to get package: %v", ErrInternal, err)
	}

	def, err := uc.forms.GetEventForm(ctx, pkg.EventID)
	if err != nil {
		if errors.Is(err, formClient.ErrFormNotFound) {
			uc.logger.Warn("StartWizard: form for event id=%d not found", pkg.EventID)
			return nil, ErrFormNotFound
		}
		uc.logger.Error("StartWizard: failed to get form for event id=%d: %v", pkg.EventID, err)
		return nil, fmt.Errorf("%w: failed to get form: %v", ErrInternal, err)
	}

	state := wizard.NewState(uc.newID(), req.UserID, *def, *pkg, uc.now())
	uc.store.Put(state)

	uc.logger.Info("StartWizard: wizard %s created for user=%d with %d dynamic fields", state.ID, req.UserID, len(def.Fields))
	return uc.Get(ctx, state.ID, req.UserID)
}

// Get возвращает текущее представление мастера
func (uc *UseCase) Get(_ context.Context, wizardID string, userID int64) (*View, error) {
	var view *View
	err := uc.store.With(wizardID, userID, func(c *wizard.Controller) error {
		view = buildView(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Discard удаляет мастер без создания бронирования
func (uc *UseCase) Discard(_ context.Context, wizardID string, userID int64) error {
	if err := uc.store.Delete(wizardID, userID); err != nil {
		uc.logger.Warn("DiscardWizard: wizard %s: %v", wizardID, err)
		return err
	}
	uc.logger.Info("DiscardWizard: wizard %s discarded by user=%d", wizardID, userID)
	return nil
}

// SetFields применяет изменения полей секции текущего шага
func (uc *UseCase) SetFields(_ context.Context, req *FieldsRequest) (*View, error) {
	var view *View
	err := uc.store.With(req.WizardID, req.UserID, func(c *wizard.Controller) error {
		if len(req.Values) > 0 {
			if err := c.SetFields(req.Section, req.Values); err != nil {
				return err
			}
		}
		if req.Scroll != nil {
			c.SetScroll(*req.Scroll)
		}
		view = buildView(c)
		return nil
	})
	if err != nil {
		uc.logger.Warn("SetFields: wizard %s section %s: %v", req.WizardID, req.Section, err)
		return nil, err
	}
	return view, nil
}

// Next переходит на следующий шаг.
// При ошибке валидации возвращает представление с незаполненными полями вместе с ошибкой
func (uc *UseCase) Next(_ context.Context, wizardID string, userID int64) (*View, error) {
	var view *View
	err := uc.store.With(wizardID, userID, func(c *wizard.Controller) error {
		_, err := c.Next()
		view = buildView(c)
		return err
	})
	if err != nil {
		uc.logger.Warn("Next: wizard %s: %v", wizardID, err)
		if errors.Is(err, wizard.ErrStepInvalid) {
			return view, err
		}
		return nil, err
	}

	uc.logger.Info("Next: wizard %s moved to step %s", wizardID, view.Step)
	return view, nil
}

// Previous возвращается на шаг назад без проверки
func (uc *UseCase) Previous(_ context.Context, wizardID string, userID int64) (*View, error) {
	var view *View
	err := uc.store.With(wizardID, userID, func(c *wizard.Controller) error {
		if err := c.Previous(); err != nil {
			return err
		}
		view = buildView(c)
		return nil
	})
	if err != nil {
		uc.logger.Warn("Previous: wizard %s: %v", wizardID, err)
		return nil, err
	}
	return view, nil
}
