package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Nestert/AsuOpt-sub000/config"
	"github.com/Nestert/AsuOpt-sub000/internal/apperr"
	"github.com/Nestert/AsuOpt-sub000/internal/hierarchy"
	"github.com/Nestert/AsuOpt-sub000/internal/signals"
	"github.com/Nestert/AsuOpt-sub000/models"
)

// KipInput / ZraInput — детальные поля при создании и обновлении устройства.
type KipInput struct {
	Manufacturer     string `json:"manufacturer"`
	Model            string `json:"model"`
	MeasuredParam    string `json:"measuredParam"`
	RangeMin         string `json:"rangeMin"`
	RangeMax         string `json:"rangeMax"`
	Unit             string `json:"unit"`
	AccuracyClass    string `json:"accuracyClass"`
	OutputSignal     string `json:"outputSignal"`
	PowerSupply      string `json:"powerSupply"`
	InstallationZone string `json:"installationZone"`
}

type ZraInput struct {
	ValveType       string `json:"valveType"`
	Manufacturer    string `json:"manufacturer"`
	Model           string `json:"model"`
	NominalBore     string `json:"nominalBore"`
	NominalPressure string `json:"nominalPressure"`
	ActuatorType    string `json:"actuatorType"`
	ControlSignal   string `json:"controlSignal"`
	FailSafePos     string `json:"failSafePos"`
}

type deviceInput struct {
	PositionCode  string    `json:"positionCode"`
	EquipmentCode string    `json:"equipmentCode"`
	DeviceType    string    `json:"deviceType"`
	Description   string    `json:"description"`
	DataType      string    `json:"dataType" binding:"required,oneof=kip zra"`
	ParentID      *uint     `json:"parentId"`
	ProjectID     uint      `json:"projectId" binding:"required"`
	Kip           *KipInput `json:"kip"`
	Zra           *ZraInput `json:"zra"`
}

func deviceScope(c *gin.Context) (*gorm.DB, error) {
	projectID, err := parseProjectID(c)
	if err != nil {
		return nil, err
	}
	query := config.DB.Model(&models.Device{})
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	return query, nil
}

// ListDevicesHandler — плоский список устройств с поиском по кодам, типу и
// описанию. Устройства без кода оборудования в дерево не попадают, но здесь
// находятся всегда.
func ListDevicesHandler(c *gin.Context) {
	query, err := deviceScope(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(position_code) LIKE ? OR LOWER(equipment_code) LIKE ? OR LOWER(device_type) LIKE ? OR LOWER(description) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var devices []models.Device
	if c.Query("all") == "true" {
		if err := query.Order("position_code").Find(&devices).Error; err != nil {
			RespondError(c, apperr.Persistence("список устройств", err))
			return
		}
		if devices == nil {
			devices = make([]models.Device, 0)
		}
		c.JSON(http.StatusOK, gin.H{"data": devices})
		return
	}

	var totalRows int64
	query.Count(&totalRows)

	if err := query.Order("position_code").Scopes(Paginate(c)).Find(&devices).Error; err != nil {
		RespondError(c, apperr.Persistence("список устройств", err))
		return
	}
	if devices == nil {
		devices = make([]models.Device, 0)
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, devices, totalRows))
}

// DeviceTreeHandler строит дерево оборудования по текущему набору устройств.
// Дерево не кэшируется: каждый запрос собирает его заново из БД.
func DeviceTreeHandler(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	query := config.DB.Order("equipment_code")
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}

	var devices []models.Device
	if err := query.Find(&devices).Error; err != nil {
		RespondError(c, apperr.Persistence("загрузка устройств для дерева", err))
		return
	}

	c.JSON(http.StatusOK, hierarchy.BuildTree(devices))
}

type deviceTypeRow struct {
	DeviceType string `json:"deviceType"`
	Cnt        int64  `json:"deviceCount"`
}

// DeviceTypesHandler возвращает типы устройств с количеством по каждому.
func DeviceTypesHandler(c *gin.Context) {
	query, err := deviceScope(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	var rows []deviceTypeRow
	err = query.Select("device_type, COUNT(*) AS cnt").
		Where("device_type <> ''").
		Group("device_type").
		Order("device_type").
		Scan(&rows).Error
	if err != nil {
		RespondError(c, apperr.Persistence("типы устройств", err))
		return
	}
	if rows == nil {
		rows = make([]deviceTypeRow, 0)
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// CreateDeviceHandler создает устройство и его детальную запись (КИП или ЗРА)
// одной транзакцией: наполовину созданных устройств не бывает.
func CreateDeviceHandler(c *gin.Context) {
	var input deviceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}

	device := models.Device{
		PositionCode:  input.PositionCode,
		EquipmentCode: input.EquipmentCode,
		DeviceType:    input.DeviceType,
		Description:   input.Description,
		DataType:      input.DataType,
		ParentID:      input.ParentID,
		ProjectID:     input.ProjectID,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&device).Error; err != nil {
			return err
		}
		return saveDeviceDetail(tx, &device, input.Kip, input.Zra)
	})
	if err != nil {
		RespondError(c, apperr.Persistence("создание устройства", err))
		return
	}

	reloadDevice(&device)
	c.JSON(http.StatusCreated, device)
}

// saveDeviceDetail создает или обновляет детальную запись устройства по его
// типу данных. Детальная запись противоположного типа не трогается: её не
// должно существовать.
func saveDeviceDetail(tx *gorm.DB, device *models.Device, kip *KipInput, zra *ZraInput) error {
	switch device.DataType {
	case models.DataTypeKip:
		detail := models.Kip{DeviceID: device.ID}
		tx.Where("device_id = ?", device.ID).FirstOrInit(&detail)
		if kip != nil {
			detail.Manufacturer = kip.Manufacturer
			detail.Model = kip.Model
			detail.MeasuredParam = kip.MeasuredParam
			detail.RangeMin = kip.RangeMin
			detail.RangeMax = kip.RangeMax
			detail.Unit = kip.Unit
			detail.AccuracyClass = kip.AccuracyClass
			detail.OutputSignal = kip.OutputSignal
			detail.PowerSupply = kip.PowerSupply
			detail.InstallationZone = kip.InstallationZone
		}
		return tx.Save(&detail).Error
	case models.DataTypeZra:
		detail := models.Zra{DeviceID: device.ID}
		tx.Where("device_id = ?", device.ID).FirstOrInit(&detail)
		if zra != nil {
			detail.ValveType = zra.ValveType
			detail.Manufacturer = zra.Manufacturer
			detail.Model = zra.Model
			detail.NominalBore = zra.NominalBore
			detail.NominalPressure = zra.NominalPressure
			detail.ActuatorType = zra.ActuatorType
			detail.ControlSignal = zra.ControlSignal
			detail.FailSafePos = zra.FailSafePos
		}
		return tx.Save(&detail).Error
	}
	return nil
}

func reloadDevice(device *models.Device) {
	config.DB.Preload("Kip").Preload("Zra").First(device)
}

// GetDeviceHandler возвращает устройство с детальной записью: у КИП заполнен
// kip и пуст zra, у ЗРА — наоборот.
func GetDeviceHandler(c *gin.Context) {
	var device models.Device
	err := config.DB.Preload("Kip").Preload("Zra").First(&device, c.Param("id")).Error
	if err != nil {
		RespondError(c, apperr.NotFound("device", "Устройство не найдено"))
		return
	}
	c.JSON(http.StatusOK, device)
}

// UpdateDeviceHandler обновляет атрибуты устройства и его детальную запись.
func UpdateDeviceHandler(c *gin.Context) {
	var device models.Device
	if err := config.DB.First(&device, c.Param("id")).Error; err != nil {
		RespondError(c, apperr.NotFound("device", "Устройство не найдено"))
		return
	}

	var input deviceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}
	if input.DataType != device.DataType {
		RespondError(c, apperr.Validation("Тип данных устройства изменить нельзя"))
		return
	}

	device.PositionCode = input.PositionCode
	device.EquipmentCode = input.EquipmentCode
	device.DeviceType = input.DeviceType
	device.Description = input.Description
	device.ParentID = input.ParentID

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&device).Error; err != nil {
			return err
		}
		return saveDeviceDetail(tx, &device, input.Kip, input.Zra)
	})
	if err != nil {
		RespondError(c, apperr.Persistence("обновление устройства", err))
		return
	}

	reloadDevice(&device)
	c.JSON(http.StatusOK, device)
}

// DeleteDeviceHandler удаляет устройство каскадно: детальные записи КИП/ЗРА и
// назначения сигналов уходят той же транзакцией. Ответ — число удалённых
// строк по каждой таблице.
func DeleteDeviceHandler(c *gin.Context) {
	var device models.Device
	if err := config.DB.First(&device, c.Param("id")).Error; err != nil {
		RespondError(c, apperr.NotFound("device", "Устройство не найдено"))
		return
	}

	removed := gin.H{}
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("device_id = ?", device.ID).Delete(&models.DeviceSignal{})
		if res.Error != nil {
			return res.Error
		}
		removed["deviceSignals"] = res.RowsAffected

		res = tx.Where("device_id = ?", device.ID).Delete(&models.Kip{})
		if res.Error != nil {
			return res.Error
		}
		removed["kips"] = res.RowsAffected

		res = tx.Where("device_id = ?", device.ID).Delete(&models.Zra{})
		if res.Error != nil {
			return res.Error
		}
		removed["zras"] = res.RowsAffected

		if err := tx.Delete(&device).Error; err != nil {
			return err
		}

		// Удалённые назначения меняют суммы уцелевших сигналов.
		return signals.RecountTotals(tx)
	})
	if err != nil {
		RespondError(c, apperr.Persistence("удаление устройства", err))
		return
	}

	removed["devices"] = int64(1)
	c.JSON(http.StatusOK, gin.H{"message": "Устройство удалено", "removed": removed})
}
