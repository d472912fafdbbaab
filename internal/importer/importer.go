// Package importer превращает строки CSV/Excel в записи справочников.
// Разбор терпим к пустым строкам и лишним колонкам, но не угадывает типы
// сигналов: неизвестные токены попадают в предупреждения отчёта.
package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Nestert/AsuOpt-sub000/models"
)

// Report — итог разбора одного файла. Отчёт возвращается клиенту сразу и
// (при настроенном Redis) сохраняется по ID на сутки.
type Report struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Imported  int       `json:"imported"`
	Skipped   int       `json:"skipped"`
	Warnings  []string  `json:"warnings"`
}

func newReport() *Report {
	return &Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Warnings:  make([]string, 0),
	}
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// DeviceRecord — устройство с опциональной детальной записью, готовое к
// сохранению одной транзакцией.
type DeviceRecord struct {
	Device models.Device
	Kip    *models.Kip
	Zra    *models.Zra
}

// Псевдонимы заголовков колонок. Заголовки нормализуются так же, как токены
// типов сигналов: верхний регистр, сжатые пробелы.
var deviceHeaderAliases = map[string]string{
	"ПОЗИЦИЯ":          "position",
	"ПОЗИЦИОННЫЙ КОД":  "position",
	"POSITION":         "position",
	"КОД ОБОРУДОВАНИЯ": "equipment",
	"КОД":              "equipment",
	"EQUIPMENT CODE":   "equipment",
	"ТИП УСТРОЙСТВА":   "type",
	"ТИП":              "type",
	"DEVICE TYPE":      "type",
	"ОПИСАНИЕ":         "description",
	"НАИМЕНОВАНИЕ":     "description",
	"DESCRIPTION":      "description",

	// Профильные колонки КИП
	"ПРОИЗВОДИТЕЛЬ":       "manufacturer",
	"МОДЕЛЬ":              "model",
	"ИЗМЕРЯЕМЫЙ ПАРАМЕТР": "param",
	"ЕД. ИЗМ.":            "unit",
	"ВЫХОДНОЙ СИГНАЛ":     "outSignal",

	// Профильные колонки ЗРА
	"ТИП АРМАТУРЫ":      "valveType",
	"DN":                "dn",
	"PN":                "pn",
	"ТИП ПРИВОДА":       "actuator",
	"СИГНАЛ УПРАВЛЕНИЯ": "ctlSignal",
}

var signalHeaderAliases = map[string]string{
	"НАИМЕНОВАНИЕ": "name",
	"ИМЯ":          "name",
	"NAME":         "name",
	"ТИП СИГНАЛА":  "type",
	"ТИП":          "type",
	"TYPE":         "type",
	"КАТЕГОРИЯ":    "category",
	"CATEGORY":     "category",
	"ОПИСАНИЕ":     "description",
	"DESCRIPTION":  "description",
	"КОЛИЧЕСТВО":   "count",
	"COUNT":        "count",
}

func normalizeHeader(h string) string {
	return strings.ToUpper(strings.Join(strings.Fields(h), " "))
}

// mapHeader строит соответствие «логическое поле → индекс колонки».
func mapHeader(header []string, aliases map[string]string) map[string]int {
	cols := make(map[string]int)
	for i, h := range header {
		if field, ok := aliases[normalizeHeader(h)]; ok {
			if _, taken := cols[field]; !taken {
				cols[field] = i
			}
		}
	}
	return cols
}

func cell(row []string, cols map[string]int, field string) string {
	i, ok := cols[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseDevices разбирает строки ведомости устройств. dataType ("kip"|"zra")
// определяет, какая детальная запись заполняется из профильных колонок.
// Строки без позиции и кода оборудования пропускаются и попадают в счётчик
// Skipped.
func ParseDevices(rows [][]string, dataType string, projectID uint) ([]DeviceRecord, *Report) {
	report := newReport()
	records := make([]DeviceRecord, 0, len(rows))
	if len(rows) == 0 {
		report.warnf("файл пуст")
		return records, report
	}

	cols := mapHeader(rows[0], deviceHeaderAliases)
	if len(cols) == 0 {
		report.warnf("не распознан заголовок: ни одна колонка не сопоставлена")
		return records, report
	}

	for n, row := range rows[1:] {
		position := cell(row, cols, "position")
		equipment := cell(row, cols, "equipment")
		if position == "" && equipment == "" {
			report.Skipped++
			continue
		}

		rec := DeviceRecord{Device: models.Device{
			PositionCode:  position,
			EquipmentCode: equipment,
			DeviceType:    cell(row, cols, "type"),
			Description:   cell(row, cols, "description"),
			DataType:      dataType,
			ProjectID:     projectID,
		}}

		switch dataType {
		case models.DataTypeKip:
			rec.Kip = &models.Kip{
				Manufacturer:  cell(row, cols, "manufacturer"),
				Model:         cell(row, cols, "model"),
				MeasuredParam: cell(row, cols, "param"),
				Unit:          cell(row, cols, "unit"),
				OutputSignal:  cell(row, cols, "outSignal"),
			}
		case models.DataTypeZra:
			rec.Zra = &models.Zra{
				ValveType:       cell(row, cols, "valveType"),
				Manufacturer:    cell(row, cols, "manufacturer"),
				Model:           cell(row, cols, "model"),
				NominalBore:     cell(row, cols, "dn"),
				NominalPressure: cell(row, cols, "pn"),
				ActuatorType:    cell(row, cols, "actuator"),
				ControlSignal:   cell(row, cols, "ctlSignal"),
			}
		default:
			report.warnf("строка %d: неизвестный тип данных %q", n+2, dataType)
			report.Skipped++
			continue
		}

		records = append(records, rec)
		report.Imported++
	}
	return records, report
}

// ParseSignals разбирает ведомость сигналов. Токен типа сигнала сверяется с
// явной таблицей соответствия; неизвестный токен — предупреждение, строка
// пропускается (никаких попыток угадать).
func ParseSignals(rows [][]string, projectID uint) ([]models.Signal, *Report) {
	report := newReport()
	signalRows := make([]models.Signal, 0, len(rows))
	if len(rows) == 0 {
		report.warnf("файл пуст")
		return signalRows, report
	}

	cols := mapHeader(rows[0], signalHeaderAliases)
	if len(cols) == 0 {
		report.warnf("не распознан заголовок: ни одна колонка не сопоставлена")
		return signalRows, report
	}

	for n, row := range rows[1:] {
		name := cell(row, cols, "name")
		if name == "" {
			report.Skipped++
			continue
		}

		rawType := cell(row, cols, "type")
		signalType, known := NormalizeSignalType(rawType)
		if !known {
			report.warnf("строка %d: неизвестный тип сигнала %q, строка пропущена", n+2, rawType)
			report.Skipped++
			continue
		}

		count := 0
		if rawCount := cell(row, cols, "count"); rawCount != "" {
			parsed, err := strconv.Atoi(rawCount)
			if err != nil || parsed < 0 {
				report.warnf("строка %d: некорректное количество %q, использовано 0", n+2, rawCount)
			} else {
				count = parsed
			}
		}

		signalRows = append(signalRows, models.Signal{
			Name:        name,
			SignalType:  signalType,
			Category:    cell(row, cols, "category"),
			Description: cell(row, cols, "description"),
			TotalCount:  count,
			ProjectID:   projectID,
		})
		report.Imported++
	}
	return signalRows, report
}
