package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Nestert/AsuOpt-sub000/config"
	"github.com/Nestert/AsuOpt-sub000/internal/apperr"
	"github.com/Nestert/AsuOpt-sub000/internal/importer"
	"github.com/Nestert/AsuOpt-sub000/models"
)

const reportTTL = 24 * time.Hour

// ImportDevicesHandler принимает ведомость устройств (CSV или Excel) и
// сохраняет записи одной транзакцией. После импорта дерево и сводка верны без
// дополнительных шагов: устройство и детальная запись пишутся вместе.
func ImportDevicesHandler(c *gin.Context) {
	projectID, err := requireProjectID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	dataType := c.DefaultQuery("dataType", models.DataTypeKip)
	if dataType != models.DataTypeKip && dataType != models.DataTypeZra {
		RespondError(c, apperr.Validation("Некорректный dataType: %q (ожидается kip или zra)", dataType))
		return
	}

	rows, err := readUpload(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	records, report := importer.ParseDevices(rows, dataType, projectID)

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		for i := range records {
			rec := &records[i]
			if err := tx.Create(&rec.Device).Error; err != nil {
				return err
			}
			if rec.Kip != nil {
				rec.Kip.DeviceID = rec.Device.ID
				if err := tx.Create(rec.Kip).Error; err != nil {
					return err
				}
			}
			if rec.Zra != nil {
				rec.Zra.DeviceID = rec.Device.ID
				if err := tx.Create(rec.Zra).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		RespondError(c, apperr.Persistence("импорт устройств", err))
		return
	}

	storeReport(report)
	c.JSON(http.StatusOK, report)
}

// ImportSignalsHandler принимает ведомость сигналов. Дубликаты по (имя, тип,
// проект) пропускаются, неизвестные токены типов — предупреждения отчёта.
func ImportSignalsHandler(c *gin.Context) {
	projectID, err := requireProjectID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	rows, err := readUpload(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	signalRows, report := importer.ParseSignals(rows, projectID)

	if len(signalRows) > 0 {
		res := config.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "signal_type"}, {Name: "project_id"}},
			DoNothing: true,
		}).Create(&signalRows)
		if res.Error != nil {
			RespondError(c, apperr.Persistence("импорт сигналов", res.Error))
			return
		}
		if skippedDup := int64(report.Imported) - res.RowsAffected; skippedDup > 0 {
			report.Imported = int(res.RowsAffected)
			report.Skipped += int(skippedDup)
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%d строк пропущено: такие сигналы уже существуют", skippedDup))
		}
	}

	storeReport(report)
	c.JSON(http.StatusOK, report)
}

// readUpload достает файл из multipart-формы и разбирает его в строки.
func readUpload(c *gin.Context) ([][]string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, apperr.Validation("Не передан файл (поле file)")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, apperr.Validation("Не удалось открыть файл: %s", err.Error())
	}
	defer f.Close()

	rows, err := importer.ReadRows(f, fileHeader.Filename)
	if err != nil {
		return nil, apperr.Validation("Не удалось разобрать файл %q: %s", fileHeader.Filename, err.Error())
	}
	return rows, nil
}

func reportKey(id string) string { return "import:report:" + id }

// storeReport сохраняет отчёт импорта в Redis на сутки. Без Redis отчёт
// доступен только в ответе на загрузку — это штатный режим.
func storeReport(report *importer.Report) {
	if config.RDB == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := config.RDB.Set(config.Ctx, reportKey(report.ID), payload, reportTTL).Err(); err != nil {
		slog.Warn("Не удалось сохранить отчёт импорта", "error", err, "report_id", report.ID)
	}
}

// GetImportReportHandler возвращает сохраненный отчёт импорта по id.
func GetImportReportHandler(c *gin.Context) {
	if config.RDB == nil {
		RespondError(c, apperr.NotFound("import-report", "Хранение отчётов импорта отключено"))
		return
	}

	payload, err := config.RDB.Get(config.Ctx, reportKey(c.Param("id"))).Bytes()
	if err != nil {
		RespondError(c, apperr.NotFound("import-report", "Отчёт импорта не найден или устарел"))
		return
	}

	var report importer.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		RespondError(c, apperr.Persistence("чтение отчёта импорта", err))
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportDevicesHandler выгружает устройства проекта в Excel.
func ExportDevicesHandler(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	query := config.DB.Preload("Kip").Preload("Zra").Order("position_code")
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}

	var devices []models.Device
	if err := query.Find(&devices).Error; err != nil {
		RespondError(c, apperr.Persistence("выгрузка устройств", err))
		return
	}

	f := excelize.NewFile()
	sheetName := "Оборудование"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)
	f.DeleteSheet(f.GetSheetName(0))

	headers := []string{"Позиция", "Код оборудования", "Тип устройства", "Описание", "Тип данных", "Производитель", "Модель"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, d := range devices {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), d.PositionCode)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), d.EquipmentCode)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), d.DeviceType)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), d.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), d.DataType)
		switch {
		case d.Kip != nil:
			f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), d.Kip.Manufacturer)
			f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), d.Kip.Model)
		case d.Zra != nil:
			f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), d.Zra.Manufacturer)
			f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), d.Zra.Model)
		}
	}

	fileName := fmt.Sprintf("devices_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(c.Writer); err != nil {
		RespondError(c, apperr.Persistence("запись Excel-файла", err))
	}
}
