package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/kp-backend/internal/logger"
	"github.com/ignatzorin/kp-backend/internal/repository"
	"github.com/ignatzorin/kp-backend/internal/service"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Маскирует внутренние ошибки и возвращает понятные сообщения клиенту.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Проверяем, не был ли уже отправлен ответ
		if c.Writer.Written() {
			return
		}

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")
		}

		statusCode := http.StatusInternalServerError
		message := "внутренняя ошибка сервера"

		var validationErr *service.ValidationError

		switch {
		case errors.Is(err.Err, repository.ErrProposalNotFound):
			statusCode = http.StatusNotFound
			message = "предложение не найдено"
		case errors.As(err.Err, &validationErr):
			statusCode = http.StatusBadRequest
			message = validationErr.Message
		case errors.Is(err.Err, service.ErrInvalidCredentials):
			statusCode = http.StatusUnauthorized
			message = service.ErrInvalidCredentials.Error()
		default:
			// Понятное сообщение отдаём как есть, внутренности прячем.
			if msg := err.Error(); msg != "" && !containsInternalKeywords(msg) {
				message = msg
			}
		}

		c.JSON(statusCode, gin.H{"error": message})
	}
}

// containsInternalKeywords проверяет, содержит ли строка ключевые слова внутренних ошибок.
func containsInternalKeywords(s string) bool {
	keywords := []string{
		"sql:",
		"database",
		"connection",
		"timeout",
		"internal",
		"panic",
		"runtime",
	}

	lower := strings.ToLower(s)
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
