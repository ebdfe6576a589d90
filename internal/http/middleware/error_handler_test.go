package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/kp-backend/internal/repository"
	"github.com/ignatzorin/kp-backend/internal/service"
)

func serveWithError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/test", func(c *gin.Context) {
		_ = c.Error(err)
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestErrorHandler_NotFound(t *testing.T) {
	w := serveWithError(t, repository.ErrProposalNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "предложение не найдено", errorMessage(t, w))
}

func TestErrorHandler_ValidationError(t *testing.T) {
	w := serveWithError(t, &service.ValidationError{Message: "Укажите название коммерческого предложения"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Укажите название коммерческого предложения", errorMessage(t, w))
}

func TestErrorHandler_InvalidCredentials(t *testing.T) {
	w := serveWithError(t, service.ErrInvalidCredentials)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestErrorHandler_MasksInternalDetails(t *testing.T) {
	w := serveWithError(t, errors.New("sql: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "внутренняя ошибка сервера", errorMessage(t, w))
}

func TestErrorHandler_WrappedNotFound(t *testing.T) {
	wrapped := errors.Join(errors.New("get proposal"), repository.ErrProposalNotFound)
	w := serveWithError(t, wrapped)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
