package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iurnickita/sankhyagw/internal/apperr"
	"github.com/iurnickita/sankhyagw/internal/contract"
	"github.com/iurnickita/sankhyagw/internal/model"
	"github.com/iurnickita/sankhyagw/internal/order"
	"github.com/iurnickita/sankhyagw/internal/sankhya"
	"github.com/iurnickita/sankhyagw/internal/sankhya/config"
	"github.com/iurnickita/sankhyagw/internal/store"
)

type Service interface {
	// SubmitOrder never returns an error: every failure is reported in the Result.
	SubmitOrder(ctx context.Context, tenantID int64, order model.Order) model.Result
	GetContract(ctx context.Context, tenantID int64) (model.Contract, error)
	MarkSynced(ctx context.Context, tenantID int64) (model.Contract, error)
}

type orderCreator interface {
	CreateOrder(ctx context.Context, tenantID int64, payload sankhya.OrderPayload) (string, error)
}

type service struct {
	store      store.Store
	contracts  *contract.Resolver
	translator *order.Translator
	erp        orderCreator
	now        func() time.Time
	zaplog     *zap.Logger
}

func NewService(cfg config.Config, store store.Store, zaplog *zap.Logger) (Service, error) {
	if store == nil {
		return nil, errors.New("service: nil store")
	}
	contracts := contract.NewResolver(cfg, store)

	service := service{
		store:      store,
		contracts:  contracts,
		translator: order.NewTranslator(store),
		erp:        sankhya.NewClient(cfg, contracts, zaplog),
		now:        time.Now,
		zaplog:     zaplog,
	}

	return &service, nil
}

func (service *service) SubmitOrder(ctx context.Context, tenantID int64, order model.Order) model.Result {
	zaplog := service.zaplog.With(
		zap.String("submission", uuid.NewString()),
		zap.Int64("tenant", tenantID),
	)

	orderID, err := service.submit(ctx, tenantID, order)
	if err != nil {
		kind := apperr.Kind(err)
		switch kind {
		case apperr.KindValidation, apperr.KindConfiguration, apperr.KindSubmission, apperr.KindCanceled:
			zaplog.Info("order not submitted", zap.String("kind", kind), zap.Error(err))
		default:
			zaplog.Error("order submission failed", zap.String("kind", kind), zap.Error(err))
		}
		return model.Result{
			Success:           false,
			Error:             err.Error(),
			Kind:              kind,
			IsValidationError: kind == apperr.KindValidation,
			Err:               err,
		}
	}

	zaplog.Info("order submitted", zap.String("orderId", orderID))
	return model.Result{Success: true, OrderID: orderID}
}

func (service *service) submit(ctx context.Context, tenantID int64, order model.Order) (string, error) {
	if tenantID <= 0 {
		return "", contract.ErrInvalidTenant
	}

	now := service.now()
	if err := service.translator.Validate(order, now); err != nil {
		return "", err
	}
	// an unusable contract fails before any price query is made for the tenant
	if _, err := service.contracts.Resolve(ctx, tenantID); err != nil {
		return "", err
	}

	payload, err := service.translator.Translate(ctx, tenantID, order, now)
	if err != nil {
		return "", err
	}

	return service.erp.CreateOrder(ctx, tenantID, payload)
}

func (service *service) GetContract(ctx context.Context, tenantID int64) (model.Contract, error) {
	return service.contracts.Contract(ctx, tenantID)
}

// MarkSynced stamps the tenant's last synchronization with the current time and schedules
// the next one after the contract's sync interval.
func (service *service) MarkSynced(ctx context.Context, tenantID int64) (model.Contract, error) {
	if _, err := service.contracts.Contract(ctx, tenantID); err != nil {
		return model.Contract{}, err
	}

	updated, err := service.store.ContractMarkSynced(ctx, tenantID, service.now())
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return model.Contract{}, fmt.Errorf("%w: %d", contract.ErrNotFound, tenantID)
		}
		return model.Contract{}, fmt.Errorf("mark tenant %d synced: %w", tenantID, err)
	}
	return updated, nil
}
