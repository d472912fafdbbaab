package signals

import (
	"log/slog"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Nestert/AsuOpt-sub000/internal/apperr"
	"github.com/Nestert/AsuOpt-sub000/models"
)

// AssignmentService выполняет массовое назначение сигналов устройствам:
// каждому устройству типа T назначаются все сигналы с категорией T.
type AssignmentService struct {
	DB *gorm.DB
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{DB: db}
}

// AssignAllResult — итог массового назначения по всем типам.
type AssignAllResult struct {
	AssignedCount  int `json:"assignedCount"`
	TypesSucceeded int `json:"typesSucceeded"`
	TypesFailed    int `json:"typesFailed"`
}

// AssignToType назначает каждому устройству типа deviceType все сигналы этой
// категории (count = 1). Повторный вызов ничего не создает: существующие
// назначения не перезаписываются, конфликт по паре (device_id, signal_id)
// считается «уже назначено». Вся последовательность — одна транзакция,
// включая полный пересчёт total_count сигналов.
func (s *AssignmentService) AssignToType(deviceType string, projectID *uint) (int, error) {
	if deviceType == "" {
		return 0, apperr.Validation("не указан тип устройства")
	}

	assigned := 0
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		sigQuery := tx.Where("category = ?", deviceType)
		if projectID != nil {
			sigQuery = sigQuery.Where("project_id = ?", *projectID)
		}
		var sigs []models.Signal
		if err := sigQuery.Find(&sigs).Error; err != nil {
			return apperr.Persistence("загрузка сигналов категории", err)
		}
		if len(sigs) == 0 {
			return apperr.NotFound("no-signals-for-type", "Сигналы с категорией %q не найдены", deviceType)
		}

		devQuery := tx.Where("device_type = ?", deviceType)
		if projectID != nil {
			devQuery = devQuery.Where("project_id = ?", *projectID)
		}
		var devs []models.Device
		if err := devQuery.Find(&devs).Error; err != nil {
			return apperr.Persistence("загрузка устройств типа", err)
		}
		if len(devs) == 0 {
			return apperr.NotFound("no-devices-for-type", "Устройства типа %q не найдены", deviceType)
		}

		// Резервная строка счётчика для типа создается при первом назначении,
		// чтобы тип появился в сводке даже без ручного ввода счётчиков.
		counter := models.DeviceTypeSignal{DeviceType: deviceType}
		if err := tx.Where("device_type = ?", deviceType).FirstOrCreate(&counter).Error; err != nil {
			return apperr.Persistence("создание строки счётчика типа", err)
		}

		links := make([]models.DeviceSignal, 0, len(devs)*len(sigs))
		for _, d := range devs {
			for _, sig := range sigs {
				links = append(links, models.DeviceSignal{DeviceID: d.ID, SignalID: sig.ID, Count: 1})
			}
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_id"}, {Name: "signal_id"}},
			DoNothing: true,
		}).Create(&links)
		if res.Error != nil {
			return apperr.Persistence("создание назначений", res.Error)
		}
		assigned = int(res.RowsAffected)

		return RecountTotals(tx)
	})
	if err != nil {
		return 0, err
	}
	return assigned, nil
}

// AssignToAllTypes прогоняет AssignToType по всем непустым категориям
// сигналов. Сбой одного типа не прерывает остальные.
func (s *AssignmentService) AssignToAllTypes(projectID *uint) (*AssignAllResult, error) {
	catQuery := s.DB.Model(&models.Signal{}).Where("category <> ''").Distinct()
	if projectID != nil {
		catQuery = catQuery.Where("project_id = ?", *projectID)
	}
	var categories []string
	if err := catQuery.Pluck("category", &categories).Error; err != nil {
		return nil, apperr.Persistence("загрузка категорий сигналов", err)
	}
	sort.Strings(categories)

	result := &AssignAllResult{}
	for _, category := range categories {
		n, err := s.AssignToType(category, projectID)
		if err != nil {
			result.TypesFailed++
			slog.Warn("Массовое назначение: тип пропущен", "deviceType", category, "error", err)
			continue
		}
		result.TypesSucceeded++
		result.AssignedCount += n
	}
	return result, nil
}

// RecountTotals полностью пересчитывает total_count всех сигналов из
// назначений. Полный пересчёт (а не инкремент) гарантирует согласованность
// даже после частичных сбоев предыдущих запусков. Вызывается в той же
// транзакции, что и изменившие назначения запросы.
func RecountTotals(tx *gorm.DB) error {
	err := tx.Exec(`UPDATE signals SET total_count = (
		SELECT COALESCE(SUM(ds.count), 0) FROM device_signals ds WHERE ds.signal_id = signals.id
	)`).Error
	if err != nil {
		return apperr.Persistence("пересчёт счётчиков сигналов", err)
	}
	return nil
}
