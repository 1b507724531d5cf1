package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", domain.Validationf("bad input"), http.StatusBadRequest, "validation"},
		{"not found", domain.NotFoundf("sale x does not exist"), http.StatusNotFound, "not_found"},
		{"business rule", domain.BusinessRulef("too many units"), http.StatusUnprocessableEntity, "business_rule"},
		{"conflict", domain.Conflictf("concurrent update"), http.StatusConflict, "conflict"},
		{"dependency", domain.Dependencyf("mysql: broken pipe"), http.StatusBadGateway, "dependency"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			writeError(c, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantCode, body["error"])
		})
	}
}

func TestWriteErrorMasksInternals(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	writeError(c, errors.New("dsn=user:secret@tcp(db)/sales"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unexpected error", body["detail"])
	assert.NotContains(t, rec.Body.String(), "secret")

	// dependency failures are likewise masked
	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	writeError(c, domain.Dependencyf("redis at 10.0.0.5: timeout"))

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "a downstream dependency failed", body["detail"])
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}
