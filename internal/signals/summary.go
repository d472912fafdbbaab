// Package signals реализует сводку сигналов по типам устройств и массовое
// назначение сигналов. Сводка сверяет три источника данных: таблицу счётчиков
// (резерв), суммы назначений (приоритет) и счётчики устройств по типам.
package signals

import (
	"log/slog"
	"sort"

	"gorm.io/gorm"

	"github.com/Nestert/AsuOpt-sub000/internal/apperr"
	"github.com/Nestert/AsuOpt-sub000/models"
)

// TypeSignalRow — строка сводки по одному типу устройства. Source показывает,
// откуда взяты счётчики: "assignments" (суммы назначений) или "counter"
// (резервная таблица device_type_signals).
type TypeSignalRow struct {
	DeviceType  string `json:"deviceType"`
	AiCount     int    `json:"aiCount"`
	AoCount     int    `json:"aoCount"`
	DiCount     int    `json:"diCount"`
	DoCount     int    `json:"doCount"`
	DeviceCount int64  `json:"deviceCount"`
	Source      string `json:"source"`
}

// Источники данных строки сводки.
const (
	SourceAssignments = "assignments"
	SourceCounter     = "counter"
)

// SignalTotals — поэлементная сумма строк сводки.
type SignalTotals struct {
	AiCount      int   `json:"aiCount"`
	AoCount      int   `json:"aoCount"`
	DiCount      int   `json:"diCount"`
	DoCount      int   `json:"doCount"`
	TotalSignals int   `json:"totalSignals"`
	TotalDevices int64 `json:"totalDevices"`
}

// Summary — результат сводки. Enriched=false означает, что запрос по
// назначениям не выполнился и все строки взяты из резервных счётчиков.
type Summary struct {
	PerDeviceType []TypeSignalRow `json:"perDeviceType"`
	Totals        SignalTotals    `json:"totals"`
	Enriched      bool            `json:"enriched"`
}

// SummaryService считает сводку сигналов из хранилища.
type SummaryService struct {
	DB *gorm.DB
}

func NewSummaryService(db *gorm.DB) *SummaryService {
	return &SummaryService{DB: db}
}

type typeCount struct {
	DeviceType string
	Cnt        int64
}

type enrichedRow struct {
	DeviceType string
	SignalType string
	Total      int
}

// GetSummary строит сводку сигналов. Сбой запроса по назначениям не валит
// запрос целиком: сводка деградирует до резервных счётчиков (целиком, не
// построчно), причина уходит в журнал. Сбои базовых запросов пробрасываются.
func (s *SummaryService) GetSummary(projectID *uint) (*Summary, error) {
	var counters []models.DeviceTypeSignal
	if err := s.DB.Find(&counters).Error; err != nil {
		return nil, apperr.Persistence("загрузка счётчиков типов устройств", err)
	}

	countQuery := s.DB.Model(&models.Device{}).
		Select("device_type, COUNT(*) AS cnt").
		Group("device_type")
	if projectID != nil {
		countQuery = countQuery.Where("project_id = ?", *projectID)
	}
	var counts []typeCount
	if err := countQuery.Scan(&counts).Error; err != nil {
		return nil, apperr.Persistence("подсчёт устройств по типам", err)
	}
	deviceCounts := make(map[string]int64, len(counts))
	for _, c := range counts {
		deviceCounts[c.DeviceType] = c.Cnt
	}

	enriched, enrichedOK := s.loadAssignmentSums(projectID)

	rows, totals := reconcile(counters, deviceCounts, enriched, enrichedOK, projectID != nil)
	return &Summary{PerDeviceType: rows, Totals: totals, Enriched: enrichedOK}, nil
}

// loadAssignmentSums суммирует назначения по парам (тип устройства, тип
// сигнала). Ошибка (например, отсутствующая таблица связей) переводит всю
// сводку в резервный режим — частичных результатов не бывает.
func (s *SummaryService) loadAssignmentSums(projectID *uint) (map[string]map[string]int, bool) {
	q := s.DB.Table("device_signals ds").
		Select("d.device_type AS device_type, sig.signal_type AS signal_type, SUM(ds.count) AS total").
		Joins("JOIN devices d ON ds.device_id = d.id").
		Joins("JOIN signals sig ON ds.signal_id = sig.id").
		Group("d.device_type, sig.signal_type")
	if projectID != nil {
		q = q.Where("d.project_id = ?", *projectID)
	}

	var rows []enrichedRow
	if err := q.Scan(&rows).Error; err != nil {
		slog.Warn("Сводка сигналов: запрос по назначениям не выполнен, используются резервные счётчики", "error", err)
		return nil, false
	}

	sums := make(map[string]map[string]int)
	for _, r := range rows {
		byType, ok := sums[r.DeviceType]
		if !ok {
			byType = make(map[string]int, len(models.SignalTypes))
			sums[r.DeviceType] = byType
		}
		byType[r.SignalType] += r.Total
	}
	return sums, true
}

// reconcile сводит три источника в строки отчёта. Базовый набор типов — строки
// таблицы счётчиков; при проектном срезе он сужается до типов, у которых в
// проекте есть устройства (счётчики чужих типов скрываются, не удаляются).
// Если запрос по назначениям выполнился и дал строку для типа, его четыре
// счётчика авторитетны даже при нулях; резервное значение применяется только
// к типам вовсе без назначений или при полном сбое обогащения.
func reconcile(
	counters []models.DeviceTypeSignal,
	deviceCounts map[string]int64,
	enriched map[string]map[string]int,
	enrichedOK bool,
	projectScoped bool,
) ([]TypeSignalRow, SignalTotals) {
	rows := make([]TypeSignalRow, 0, len(counters))
	var totals SignalTotals

	for _, c := range counters {
		if projectScoped {
			if _, present := deviceCounts[c.DeviceType]; !present {
				continue
			}
		}

		row := TypeSignalRow{
			DeviceType:  c.DeviceType,
			AiCount:     c.AiCount,
			AoCount:     c.AoCount,
			DiCount:     c.DiCount,
			DoCount:     c.DoCount,
			DeviceCount: deviceCounts[c.DeviceType],
			Source:      SourceCounter,
		}
		if enrichedOK {
			if byType, ok := enriched[c.DeviceType]; ok {
				row.AiCount = byType[models.SignalAI]
				row.AoCount = byType[models.SignalAO]
				row.DiCount = byType[models.SignalDI]
				row.DoCount = byType[models.SignalDO]
				row.Source = SourceAssignments
			}
		}

		rows = append(rows, row)
		totals.AiCount += row.AiCount
		totals.AoCount += row.AoCount
		totals.DiCount += row.DiCount
		totals.DoCount += row.DoCount
		totals.TotalDevices += row.DeviceCount
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].DeviceType < rows[j].DeviceType })
	totals.TotalSignals = totals.AiCount + totals.AoCount + totals.DiCount + totals.DoCount
	return rows, totals
}
