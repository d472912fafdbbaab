package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Nestert/AsuOpt-sub000/config"
	"github.com/Nestert/AsuOpt-sub000/internal/apperr"
	"github.com/Nestert/AsuOpt-sub000/internal/signals"
	"github.com/Nestert/AsuOpt-sub000/models"
)

// ListProjectsHandler возвращает список проектов.
func ListProjectsHandler(c *gin.Context) {
	var projects []models.Project

	query := config.DB.Order("code")

	if c.Query("all") == "true" {
		if err := query.Find(&projects).Error; err != nil {
			RespondError(c, apperr.Persistence("список проектов", err))
			return
		}
		if projects == nil {
			projects = make([]models.Project, 0)
		}
		c.JSON(http.StatusOK, projects)
		return
	}

	var totalRows int64
	config.DB.Model(&models.Project{}).Count(&totalRows)

	if err := query.Scopes(Paginate(c)).Find(&projects).Error; err != nil {
		RespondError(c, apperr.Persistence("список проектов", err))
		return
	}
	if projects == nil {
		projects = make([]models.Project, 0)
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, projects, totalRows))
}

// CreateProjectHandler создает проект. Код проекта уникален.
func CreateProjectHandler(c *gin.Context) {
	var input struct {
		Code        string `json:"code" binding:"required"`
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}

	project := models.Project{Code: input.Code, Name: input.Name, Description: input.Description}
	if err := config.DB.Create(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			RespondError(c, apperr.Conflict("Проект с кодом %q уже существует", input.Code))
			return
		}
		RespondError(c, apperr.Persistence("создание проекта", err))
		return
	}
	c.JSON(http.StatusCreated, project)
}

// GetProjectHandler возвращает проект по id.
func GetProjectHandler(c *gin.Context) {
	var project models.Project
	if err := config.DB.First(&project, c.Param("id")).Error; err != nil {
		RespondError(c, apperr.NotFound("project", "Проект не найден"))
		return
	}
	c.JSON(http.StatusOK, project)
}

// UpdateProjectHandler обновляет атрибуты проекта.
func UpdateProjectHandler(c *gin.Context) {
	var project models.Project
	if err := config.DB.First(&project, c.Param("id")).Error; err != nil {
		RespondError(c, apperr.NotFound("project", "Проект не найден"))
		return
	}

	var input struct {
		Code        string `json:"code" binding:"required"`
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}

	project.Code = input.Code
	project.Name = input.Name
	project.Description = input.Description

	if err := config.DB.Save(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			RespondError(c, apperr.Conflict("Проект с кодом %q уже существует", input.Code))
			return
		}
		RespondError(c, apperr.Persistence("обновление проекта", err))
		return
	}
	c.JSON(http.StatusOK, project)
}

// DeleteProjectHandler удаляет проект вместе со всеми его данными: устройства,
// детальные записи, сигналы и назначения. Одна транзакция — либо всё, либо
// ничего. Ответ содержит число удалённых строк по таблицам.
func DeleteProjectHandler(c *gin.Context) {
	var project models.Project
	if err := config.DB.First(&project, c.Param("id")).Error; err != nil {
		RespondError(c, apperr.NotFound("project", "Проект не найден"))
		return
	}

	removed := gin.H{}
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		deviceIDs := tx.Model(&models.Device{}).Select("id").Where("project_id = ?", project.ID)
		signalIDs := tx.Model(&models.Signal{}).Select("id").Where("project_id = ?", project.ID)

		res := tx.Where("device_id IN (?) OR signal_id IN (?)", deviceIDs, signalIDs).Delete(&models.DeviceSignal{})
		if res.Error != nil {
			return res.Error
		}
		removed["deviceSignals"] = res.RowsAffected

		res = tx.Where("device_id IN (?)", deviceIDs).Delete(&models.Kip{})
		if res.Error != nil {
			return res.Error
		}
		removed["kips"] = res.RowsAffected

		res = tx.Where("device_id IN (?)", deviceIDs).Delete(&models.Zra{})
		if res.Error != nil {
			return res.Error
		}
		removed["zras"] = res.RowsAffected

		res = tx.Where("project_id = ?", project.ID).Delete(&models.Device{})
		if res.Error != nil {
			return res.Error
		}
		removed["devices"] = res.RowsAffected

		res = tx.Where("project_id = ?", project.ID).Delete(&models.Signal{})
		if res.Error != nil {
			return res.Error
		}
		removed["signals"] = res.RowsAffected

		res = tx.Where("project_id = ?", project.ID).Delete(&models.FilterPreset{})
		if res.Error != nil {
			return res.Error
		}
		removed["presets"] = res.RowsAffected

		if err := tx.Delete(&project).Error; err != nil {
			return err
		}

		// Суммы сигналов других проектов пересчитываются после ухода назначений.
		return signals.RecountTotals(tx)
	})
	if err != nil {
		RespondError(c, apperr.Persistence("удаление проекта", err))
		return
	}

	removed["projects"] = int64(1)
	c.JSON(http.StatusOK, gin.H{"message": "Проект и его данные удалены", "removed": removed})
}
