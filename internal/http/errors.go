package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
)

// statusFor maps domain error codes onto HTTP statuses. Data-integrity
// faults around the burn-down chart stay 500 but keep their code so
// the frontend can tell them apart from generic failures.
func statusFor(code string) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeConflict, domain.CodeSprintNotStarted:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	c.JSON(statusFor(code), gin.H{"code": code, "error": err.Error()})
}
