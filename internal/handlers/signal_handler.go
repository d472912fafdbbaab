package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Nestert/AsuOpt-sub000/config"
	"github.com/Nestert/AsuOpt-sub000/internal/apperr"
	"github.com/Nestert/AsuOpt-sub000/internal/signals"
	"github.com/Nestert/AsuOpt-sub000/models"
)

// ListSignalsHandler возвращает справочник сигналов.
func ListSignalsHandler(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	query := config.DB.Model(&models.Signal{}).Order("name")
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var signalRows []models.Signal
	if c.Query("all") == "true" {
		if err := query.Find(&signalRows).Error; err != nil {
			RespondError(c, apperr.Persistence("список сигналов", err))
			return
		}
		if signalRows == nil {
			signalRows = make([]models.Signal, 0)
		}
		c.JSON(http.StatusOK, gin.H{"data": signalRows})
		return
	}

	var totalRows int64
	query.Count(&totalRows)

	if err := query.Scopes(Paginate(c)).Find(&signalRows).Error; err != nil {
		RespondError(c, apperr.Persistence("список сигналов", err))
		return
	}
	if signalRows == nil {
		signalRows = make([]models.Signal, 0)
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, signalRows, totalRows))
}

type signalInput struct {
	Name        string `json:"name" binding:"required"`
	SignalType  string `json:"type" binding:"required,oneof=AI AO DI DO"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ProjectID   uint   `json:"projectId" binding:"required"`
}

// CreateSignalHandler создает сигнал. Пара (имя, тип) уникальна в проекте.
func CreateSignalHandler(c *gin.Context) {
	var input signalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}

	signal := models.Signal{
		Name:        input.Name,
		SignalType:  input.SignalType,
		Category:    input.Category,
		Description: input.Description,
		ProjectID:   input.ProjectID,
	}
	if err := config.DB.Create(&signal).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			RespondError(c, apperr.Conflict("Сигнал %q типа %s уже существует", input.Name, input.SignalType))
			return
		}
		RespondError(c, apperr.Persistence("создание сигнала", err))
		return
	}
	c.JSON(http.StatusCreated, signal)
}

// UpdateSignalHandler обновляет атрибуты сигнала. TotalCount не редактируется:
// он пересчитывается из назначений.
func UpdateSignalHandler(c *gin.Context) {
	var signal models.Signal
	if err := config.DB.First(&signal, c.Param("id")).Error; err != nil {
		RespondError(c, apperr.NotFound("signal", "Сигнал не найден"))
		return
	}

	var input signalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}

	signal.Name = input.Name
	signal.SignalType = input.SignalType
	signal.Category = input.Category
	signal.Description = input.Description

	if err := config.DB.Save(&signal).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			RespondError(c, apperr.Conflict("Сигнал %q типа %s уже существует", input.Name, input.SignalType))
			return
		}
		RespondError(c, apperr.Persistence("обновление сигнала", err))
		return
	}
	c.JSON(http.StatusOK, signal)
}

// DeleteSignalHandler удаляет сигнал и его назначения одной транзакцией.
func DeleteSignalHandler(c *gin.Context) {
	var signal models.Signal
	if err := config.DB.First(&signal, c.Param("id")).Error; err != nil {
		RespondError(c, apperr.NotFound("signal", "Сигнал не найден"))
		return
	}

	var assignmentsRemoved int64
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("signal_id = ?", signal.ID).Delete(&models.DeviceSignal{})
		if res.Error != nil {
			return res.Error
		}
		assignmentsRemoved = res.RowsAffected
		return tx.Delete(&signal).Error
	})
	if err != nil {
		RespondError(c, apperr.Persistence("удаление сигнала", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Сигнал удален",
		"removed": gin.H{"signals": int64(1), "deviceSignals": assignmentsRemoved},
	})
}

// SignalsSummaryHandler — сводка счётчиков сигналов по типам устройств (§ядро):
// назначения в приоритете, резервные счётчики при их отсутствии.
func SignalsSummaryHandler(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	summary, err := signals.NewSummaryService(config.DB).GetSummary(projectID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// AssignSignalsToTypeHandler массово назначает сигналы категории всем
// устройствам типа. Повторный вызов ничего не дублирует.
func AssignSignalsToTypeHandler(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	assigned, err := signals.NewAssignmentService(config.DB).AssignToType(c.Param("deviceType"), projectID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignedCount": assigned})
}

// AssignSignalsToAllTypesHandler — то же для всех категорий сигналов; сбой
// одного типа не прерывает остальные.
func AssignSignalsToAllTypesHandler(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	result, err := signals.NewAssignmentService(config.DB).AssignToAllTypes(projectID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateDeviceTypeSignalHandler вручную задает резервные счётчики типа
// устройства (upsert по device_type). Тип берется из пути: пустым он быть
// не может.
func UpdateDeviceTypeSignalHandler(c *gin.Context) {
	var input struct {
		AiCount int `json:"aiCount"`
		AoCount int `json:"aoCount"`
		DiCount int `json:"diCount"`
		DoCount int `json:"doCount"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}

	counter := models.DeviceTypeSignal{
		DeviceType: c.Param("deviceType"),
		AiCount:    input.AiCount,
		AoCount:    input.AoCount,
		DiCount:    input.DiCount,
		DoCount:    input.DoCount,
	}
	err := config.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"ai_count", "ao_count", "di_count", "do_count"}),
	}).Create(&counter).Error
	if err != nil {
		RespondError(c, apperr.Persistence("сохранение счётчиков типа", err))
		return
	}
	c.JSON(http.StatusOK, counter)
}

// ClearDeviceTypeSignalsHandler очищает таблицу резервных счётчиков.
func ClearDeviceTypeSignalsHandler(c *gin.Context) {
	res := config.DB.Where("1 = 1").Delete(&models.DeviceTypeSignal{})
	if res.Error != nil {
		RespondError(c, apperr.Persistence("очистка счётчиков типов", res.Error))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Счётчики типов устройств очищены", "removed": res.RowsAffected})
}
