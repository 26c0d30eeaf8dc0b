package handlers

import (
	"errors"
	"net/http"

	"copystudio/internal/domain"
	"copystudio/internal/metrics"
)

type generateRequest struct {
	Type  domain.ContentType `json:"type" validate:"required"`
	Topic string             `json:"topic" validate:"required"`
	Tone  string             `json:"tone"`
}

type generateResponse struct {
	Entry domain.GenerationHistory `json:"entry"`
	User  *domain.User             `json:"user"`
}

// Generate runs one generation request and returns the new history entry
// together with the user's updated counters.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !a.decodeValid(w, r, &req) {
		return
	}
	tone := req.Tone
	if tone == "" {
		tone = "Professional"
	}

	entry, err := a.Workspace.Generate(r.Context(), req.Type, req.Topic, tone)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(string(req.Type), "failure").Inc()
		a.generateError(w, err)
		return
	}
	metrics.GenerationsTotal.WithLabelValues(string(req.Type), "success").Inc()

	_, user, _ := a.Sessions.Snapshot()
	a.json(w, http.StatusCreated, generateResponse{Entry: entry, User: user})
}

func (a *App) generateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyTopic), errors.Is(err, domain.ErrInvalidContentType):
		a.error(w, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, domain.ErrAuthRequired):
		a.error(w, http.StatusUnauthorized, "auth", err.Error())
	case errors.Is(err, domain.ErrUsageLimitReached):
		a.error(w, http.StatusForbidden, "limit", "Monthly word limit reached. Upgrade to keep generating.")
	case errors.Is(err, domain.ErrGenerationInFlight):
		a.error(w, http.StatusConflict, "busy", err.Error())
	default:
		a.error(w, http.StatusBadGateway, "generation", "Failed to generate content. Please try again.")
	}
}
