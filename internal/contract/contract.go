// Package contract resolves the ERP credentials of a tenant from its contract record.
package contract

import (
	"context"
	"errors"
	"fmt"

	"github.com/iurnickita/sankhyagw/internal/apperr"
	"github.com/iurnickita/sankhyagw/internal/model"
	sankhyaConfig "github.com/iurnickita/sankhyagw/internal/sankhya/config"
	"github.com/iurnickita/sankhyagw/internal/store"
)

var (
	ErrInvalidTenant         = fmt.Errorf("%w: tenant id must be positive", apperr.ErrConfiguration)
	ErrNotFound              = fmt.Errorf("%w: tenant has no active contract", apperr.ErrConfiguration)
	ErrInactive              = fmt.Errorf("%w: tenant contract is inactive", apperr.ErrConfiguration)
	ErrIncompleteCredentials = fmt.Errorf("%w: incomplete Sankhya credentials for tenant", apperr.ErrConfiguration)
)

type Resolver struct {
	store         store.Store
	productionURL string
	sandboxURL    string
}

func NewResolver(cfg sankhyaConfig.Config, store store.Store) *Resolver {
	return &Resolver{
		store:         store,
		productionURL: cfg.ProductionURL,
		sandboxURL:    cfg.SandboxURL,
	}
}

// Resolve re-reads the contract on every call, there is no in-process cache.
func (r *Resolver) Resolve(ctx context.Context, tenantID int64) (model.Credentials, error) {
	contract, err := r.Contract(ctx, tenantID)
	if err != nil {
		return model.Credentials{}, err
	}

	data := contract.Data
	if data.Token == "" || data.AppKey == "" || data.Username == "" || data.Password == "" {
		return model.Credentials{}, fmt.Errorf("%w %d", ErrIncompleteCredentials, tenantID)
	}

	baseURL := r.productionURL
	if data.Sandbox {
		baseURL = r.sandboxURL
	}

	return model.Credentials{
		TenantID: tenantID,
		Token:    data.Token,
		AppKey:   data.AppKey,
		Username: data.Username,
		Password: data.Password,
		BaseURL:  baseURL,
		Sandbox:  data.Sandbox,
	}, nil
}

// Contract returns the active contract of the tenant.
func (r *Resolver) Contract(ctx context.Context, tenantID int64) (model.Contract, error) {
	if tenantID <= 0 {
		return model.Contract{}, ErrInvalidTenant
	}

	contract, err := r.store.ContractGetActive(ctx, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return model.Contract{}, fmt.Errorf("%w: %d", ErrNotFound, tenantID)
		}
		return model.Contract{}, fmt.Errorf("load contract of tenant %d: %w", tenantID, err)
	}
	if !contract.Data.Active {
		return model.Contract{}, fmt.Errorf("%w: %d", ErrInactive, tenantID)
	}
	return contract, nil
}
