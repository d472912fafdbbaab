package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Nestert/AsuOpt-sub000/internal/apperr"
)

// RespondError переводит ошибку таксономии apperr в HTTP-ответ. Всё, что не
// распознано, уходит как 500 с общим текстом: детали только в журнале.
func RespondError(c *gin.Context, err error) {
	var validation *apperr.ValidationError
	var notFound *apperr.NotFoundError
	var conflict *apperr.ConflictError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Message, "kind": notFound.Kind})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Message})
	default:
		slog.Error("Внутренняя ошибка обработчика", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера"})
	}
}

// parseProjectID читает необязательный параметр projectId. nil — срез по всем
// проектам. Нечисловое значение — ошибка валидации.
func parseProjectID(c *gin.Context) (*uint, error) {
	raw := c.Query("projectId")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, apperr.Validation("Некорректный projectId: %q", raw)
	}
	val := uint(id)
	return &val, nil
}

// requireProjectID — то же, но параметр обязателен (пишущие эндпойнты).
func requireProjectID(c *gin.Context) (uint, error) {
	id, err := parseProjectID(c)
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, apperr.Validation("Не указан обязательный параметр projectId")
	}
	return *id, nil
}
