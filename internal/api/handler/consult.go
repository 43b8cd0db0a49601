package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/avely-labs/formation-advisor/internal/api/response"
	"github.com/avely-labs/formation-advisor/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// Consulter runs one advisory orchestration cycle
type Consulter interface {
	Consult(ctx context.Context, req domain.ConsultRequest) (*domain.ConsultResponse, error)
}

// ConsultHandler handles the consultation endpoint
type ConsultHandler struct {
	service Consulter
}

// NewConsultHandler creates a new consult handler
func NewConsultHandler(service Consulter) *ConsultHandler {
	return &ConsultHandler{service: service}
}

// Consult handles POST /consult
func (h *ConsultHandler) Consult(w http.ResponseWriter, r *http.Request) {
	var req domain.ConsultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, "query must be between 10 and 5000 characters")
		return
	}

	result, err := h.service.Consult(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAllAnalystsFailed):
			response.GatewayTimeout(w, "advisory analysis timed out, please try again")
		case errors.Is(err, domain.ErrSynthesisFailed):
			log.Error().Err(err).Msg("synthesis failed")
			response.InternalError(w, "failed to synthesize a recommendation, please try again")
		default:
			log.Error().Err(err).Msg("consultation failed")
			response.InternalError(w, "an unexpected error occurred")
		}
		return
	}

	response.OK(w, result)
}
