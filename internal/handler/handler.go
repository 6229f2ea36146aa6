package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iurnickita/sankhyagw/internal/apperr"
	"github.com/iurnickita/sankhyagw/internal/auth"
	"github.com/iurnickita/sankhyagw/internal/handler/config"
	"github.com/iurnickita/sankhyagw/internal/logger"
	"github.com/iurnickita/sankhyagw/internal/model"
	"github.com/iurnickita/sankhyagw/internal/service"
)

const (
	maxOrderBody    = 1 << 20
	shutdownTimeout = 35 * time.Second
)

// Serve listens until ctx is canceled, then waits for in-flight submissions to finish.
func Serve(ctx context.Context, cfg config.Config, auth auth.Auth, service service.Service, zaplog *zap.Logger) error {
	h := newHandler(auth, service, zaplog)

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           h.newRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zaplog.Info("listening", zap.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type handler struct {
	auth    auth.Auth
	service service.Service
	zaplog  *zap.Logger
}

func newHandler(auth auth.Auth, service service.Service, zaplog *zap.Logger) *handler {
	return &handler{
		auth:    auth,
		service: service,
		zaplog:  zaplog,
	}
}

func (h *handler) newRouter() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", logger.RequestLogMdlw(h.auth.Middleware(h.PostOrder), h.zaplog))
	mux.HandleFunc("GET /api/contract", logger.RequestLogMdlw(h.auth.Middleware(h.GetContract), h.zaplog))
	mux.HandleFunc("POST /api/contract/synced", logger.RequestLogMdlw(h.auth.Middleware(h.PostContractSynced), h.zaplog))

	return mux
}

// PostOrder answers with the submission Result. The status code follows the error kind so
// callers can queue transient failures without reading the body.
func (h *handler) PostOrder(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := auth.TenantFromContext(r.Context())

	// JSON тело заказа
	var order model.Order
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxOrderBody))
	if err := dec.Decode(&order); err != nil {
		err = fmt.Errorf("%w: malformed order body: %w", apperr.ErrValidation, err)
		h.writeJSON(w, http.StatusBadRequest, model.Result{
			Error:             err.Error(),
			Kind:              apperr.KindValidation,
			IsValidationError: true,
		})
		return
	}

	result := h.service.SubmitOrder(r.Context(), tenantID, order)
	h.writeJSON(w, apperr.HTTPStatus(result.Err), result)
}

// ContractStatusJSONResponse is the contract without its ERP credentials.
type ContractStatusJSONResponse struct {
	TenantID            int64      `json:"tenantId"`
	Name                string     `json:"name"`
	TaxID               string     `json:"taxId"`
	Active              bool       `json:"active"`
	Sandbox             bool       `json:"sandbox"`
	CredentialsComplete bool       `json:"credentialsComplete"`
	SyncActive          bool       `json:"syncActive"`
	SyncIntervalMinutes int        `json:"syncIntervalMinutes"`
	LastSync            *time.Time `json:"lastSync,omitempty"`
	NextSync            *time.Time `json:"nextSync,omitempty"`
}

func contractStatus(contract model.Contract) ContractStatusJSONResponse {
	data := contract.Data
	status := ContractStatusJSONResponse{
		TenantID:            contract.TenantID,
		Name:                data.Name,
		TaxID:               data.TaxID,
		Active:              data.Active,
		Sandbox:             data.Sandbox,
		CredentialsComplete: data.Token != "" && data.AppKey != "" && data.Username != "" && data.Password != "",
		SyncActive:          data.SyncActive,
		SyncIntervalMinutes: data.SyncIntervalMinutes,
	}
	if !data.LastSync.IsZero() {
		status.LastSync = &data.LastSync
	}
	if !data.NextSync.IsZero() {
		status.NextSync = &data.NextSync
	}
	return status
}

func (h *handler) GetContract(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := auth.TenantFromContext(r.Context())

	contract, err := h.service.GetContract(r.Context(), tenantID)
	if err != nil {
		http.Error(w, err.Error(), apperr.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, contractStatus(contract))
}

func (h *handler) PostContractSynced(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := auth.TenantFromContext(r.Context())

	contract, err := h.service.MarkSynced(r.Context(), tenantID)
	if err != nil {
		http.Error(w, err.Error(), apperr.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, contractStatus(contract))
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(responseJSON); err != nil {
		h.zaplog.Debug("write response", zap.Error(err))
	}
}
