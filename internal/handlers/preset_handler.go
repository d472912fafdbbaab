package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Nestert/AsuOpt-sub000/config"
	"github.com/Nestert/AsuOpt-sub000/internal/apperr"
	"github.com/Nestert/AsuOpt-sub000/models"
)

// presetOwner — владелец пресетов. Аутентификации нет, поэтому владельца
// называет клиент заголовком X-User; без заголовка пресеты общие.
func presetOwner(c *gin.Context) string {
	if owner := c.GetHeader("X-User"); owner != "" {
		return owner
	}
	return "default"
}

// ListFilterPresetsHandler возвращает пресеты фильтров владельца.
func ListFilterPresetsHandler(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	query := config.DB.Where("owner = ?", presetOwner(c)).Order("name")
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}

	var presets []models.FilterPreset
	if err := query.Find(&presets).Error; err != nil {
		RespondError(c, apperr.Persistence("список пресетов", err))
		return
	}
	if presets == nil {
		presets = make([]models.FilterPreset, 0)
	}
	c.JSON(http.StatusOK, gin.H{"data": presets})
}

// SaveFilterPresetHandler создает пресет фильтров.
func SaveFilterPresetHandler(c *gin.Context) {
	var input struct {
		Name      string `json:"name" binding:"required"`
		ProjectID uint   `json:"projectId" binding:"required"`
		Payload   string `json:"payload"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}
	if input.Payload == "" {
		input.Payload = "{}"
	}

	preset := models.FilterPreset{
		Owner:     presetOwner(c),
		Name:      input.Name,
		ProjectID: input.ProjectID,
		Payload:   input.Payload,
	}
	if err := config.DB.Create(&preset).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			RespondError(c, apperr.Conflict("Пресет %q уже существует", input.Name))
			return
		}
		RespondError(c, apperr.Persistence("сохранение пресета", err))
		return
	}
	c.JSON(http.StatusCreated, preset)
}

// DeleteFilterPresetHandler удаляет пресет владельца.
func DeleteFilterPresetHandler(c *gin.Context) {
	res := config.DB.Where("owner = ?", presetOwner(c)).Delete(&models.FilterPreset{}, c.Param("id"))
	if res.Error != nil {
		RespondError(c, apperr.Persistence("удаление пресета", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		RespondError(c, apperr.NotFound("preset", "Пресет не найден"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Пресет удален"})
}
