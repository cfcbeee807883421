// Package handler exposes the payment webhook endpoint. It owns raw-body
// capture and the response envelope the gateway expects; reconciliation
// lives in the service.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aakar/internal/platform/middleware"
	"aakar/internal/webhook"
	"aakar/internal/webhook/metrics"
	"aakar/internal/webhook/service"
	dErrors "aakar/pkg/domain-errors"
	"aakar/pkg/platform/httputil"
)

// maxBodyBytes caps webhook bodies; gateway payloads are small.
const maxBodyBytes = 1 << 20

// Service is the reconciler consumed by this handler.
type Service interface {
	Process(ctx context.Context, entity webhook.PaymentEntity) (service.Result, error)
}

// Handler handles the inbound payment webhook.
type Handler struct {
	logger   *slog.Logger
	verifier *webhook.Verifier
	service  Service
	metrics  *metrics.Metrics
}

func New(verifier *webhook.Verifier, svc Service, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		verifier: verifier,
		service:  svc,
		metrics:  m,
	}
}

// Register registers the webhook route with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/webhook/payment", h.handlePayment)
}

func (h *Handler) handlePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	// The signature covers the exact bytes the gateway sent, so the body is
	// captured before any JSON decoding.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to read webhook body",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid payload"})
		return
	}

	if !h.verifier.Verify(body, r.Header.Get(webhook.SignatureHeader)) {
		h.metrics.IncInvalidSignature()
		h.logger.WarnContext(ctx, "webhook signature rejected", "request_id", requestID)
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid signature"})
		return
	}

	var event webhook.Event
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.WarnContext(ctx, "malformed webhook payload",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid payload"})
		return
	}

	res, err := h.service.Process(ctx, event.Payload.Payment.Entity)
	if err != nil {
		switch {
		case dErrors.Is(err, dErrors.CodeCapacityExceeded):
			httputil.WriteJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"message": "Maximum event registration limit reached",
			})
		case dErrors.Is(err, dErrors.CodeBadRequest):
			httputil.WriteJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"message": err.Error(),
			})
		default:
			h.logger.ErrorContext(ctx, "webhook processing failed",
				"request_id", requestID,
				"error", err.Error(),
			)
			httputil.WriteJSON(w, http.StatusInternalServerError, map[string]any{
				"message": "Internal server error",
				"error":   "webhook processing failed",
			})
		}
		return
	}

	if res.Duplicate {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Order already processed",
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"registrationsAdded": res.Added,
	})
}
