package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
)

// writeError maps the domain error taxonomy onto HTTP statuses. Unknown
// errors are masked as a plain 500 so internals never leak unwrapped.
func writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := http.StatusInternalServerError
	code := "internal_error"
	detail := "unexpected error"

	switch kind {
	case domain.ErrValidation:
		status, code, detail = http.StatusBadRequest, "validation", err.Error()
	case domain.ErrNotFound:
		status, code, detail = http.StatusNotFound, "not_found", err.Error()
	case domain.ErrBusinessRule:
		status, code, detail = http.StatusUnprocessableEntity, "business_rule", err.Error()
	case domain.ErrConflict:
		status, code, detail = http.StatusConflict, "conflict", err.Error()
	case domain.ErrDependency:
		status, code, detail = http.StatusBadGateway, "dependency", "a downstream dependency failed"
	}

	_ = c.Error(err)
	c.JSON(status, gin.H{"error": code, "detail": detail})
}
