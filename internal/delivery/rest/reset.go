package rest

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
	"github.com/aliskhannn/boulder-progress/internal/service"
)

const (
	resetSecretHeader   = "x-simple-reset-secret"
	resetSuccessMessage = "Simple monthly reset completed - fresh start for everyone! 🎯"
	resetUnauthorized   = "Unauthorized - invalid secret or token"
)

type resetSuccess struct {
	Success   bool                  `json:"success"`
	Message   string                `json:"message"`
	Details   *entities.ResetResult `json:"details"`
	Timestamp time.Time             `json:"timestamp"`
}

type resetFailure struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// MonthlyReset deletes the progress of every user. Callers authorize with the
// shared secret header or a bearer token of a signed-in user.
func (h *Handler) MonthlyReset(w http.ResponseWriter, r *http.Request) {
	creds := service.Credentials{
		Secret:      r.Header.Get(resetSecretHeader),
		BearerToken: bearerToken(r),
	}

	verdict, err := h.reset.Authorize(r.Context(), creds)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": resetUnauthorized})
		return
	}

	h.logger.Info("reset authorized",
		zap.String("strategy", verdict.Strategy),
		zap.String("caller", string(verdict.Caller)),
		zap.String("user_id", verdict.Subject),
		zap.String("request_id", requestIDFrom(r.Context())),
	)

	result, err := h.reset.Execute(r.Context(), verdict.Caller)
	if h.metrics != nil {
		h.metrics.ObserveReset(verdict.Caller, result)
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, resetFailure{
			Success:   false,
			Error:     err.Error(),
			Timestamp: h.now().UTC(),
		})
		return
	}

	writeJSON(w, http.StatusOK, resetSuccess{
		Success:   true,
		Message:   resetSuccessMessage,
		Details:   result,
		Timestamp: h.now().UTC(),
	})
}
