package handlers

import (
	"context"
	"errors"
	"net/http"

	"copystudio/internal/billing"
	"copystudio/internal/domain"
	"copystudio/internal/metrics"
)

type createOrderRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
	Amount int    `json:"amount" validate:"required,gt=0"`
}

type verifyPaymentRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// CreateOrder asks the payment workflow for a new order.
func (a *App) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !a.decodeValid(w, r, &req) {
		return
	}
	order, err := a.Payments.CreateOrder(r.Context(), req.PlanID, req.Amount)
	if err != nil {
		a.billingError(w, err)
		return
	}
	a.json(w, http.StatusCreated, order)
}

// VerifyPayment submits the payment proof. Verification mismatches are
// soft-accepted by the billing client; the response exposes Verified so the
// discrepancy stays observable.
func (a *App) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if !a.decodeValid(w, r, &req) {
		return
	}
	result, err := a.Payments.VerifyPayment(r.Context(), billing.VerifyRequest{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		a.billingError(w, err)
		return
	}
	outcome := "verified"
	if !result.Verified {
		outcome = "soft_accepted"
	}
	metrics.PaymentVerifications.WithLabelValues(outcome).Inc()
	a.json(w, http.StatusOK, result)
}

// DisabledPayments stands in when no workflow endpoint is configured.
type DisabledPayments struct{}

func (DisabledPayments) CreateOrder(ctx context.Context, planID string, amount int) (*billing.Order, error) {
	return nil, errors.New("billing: workflow endpoint not configured")
}

func (DisabledPayments) VerifyPayment(ctx context.Context, req billing.VerifyRequest) (*billing.VerifyResult, error) {
	return nil, errors.New("billing: workflow endpoint not configured")
}

func (a *App) billingError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrAuthRequired) || errors.Is(err, domain.ErrNoSession) {
		a.error(w, http.StatusUnauthorized, "auth", "authentication required")
		return
	}
	a.Logger.Error().Err(err).Msg("payment workflow call failed")
	a.error(w, http.StatusBadGateway, "transport", "payment workflow unreachable")
}
