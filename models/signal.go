package models

import "time"

// Типы сигналов. Свободный текст из импорта нормализуется в один из этих
// четырёх кодов (internal/importer), в БД другие значения не попадают.
const (
	SignalAI = "AI"
	SignalAO = "AO"
	SignalDI = "DI"
	SignalDO = "DO"
)

// SignalTypes — канонический порядок типов сигналов для отчётов и сводок.
var SignalTypes = []string{SignalAI, SignalAO, SignalDI, SignalDO}

// Signal — справочник сигналов. Category связывает сигнал с типом устройства
// (join-ключ массового назначения). TotalCount — производный кэш, пересчитывается
// из назначений целиком, вручную не редактируется.
type Signal struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;uniqueIndex:idx_signal_name_type"`
	SignalType  string    `json:"type" gorm:"not null;uniqueIndex:idx_signal_name_type"`
	Category    string    `json:"category" gorm:"index"`
	Description string    `json:"description"`
	TotalCount  int       `json:"totalCount" gorm:"default:0"`
	ProjectID   uint      `json:"projectId" gorm:"index;uniqueIndex:idx_signal_name_type"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DeviceSignal — назначение «у устройства X есть N экземпляров сигнала Y».
// Уникальность пары (device_id, signal_id) разрешает гонку двух параллельных
// массовых назначений: проигравший insert падает по индексу и считается
// уже назначенным.
type DeviceSignal struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	DeviceID uint `json:"deviceId" gorm:"not null;uniqueIndex:idx_device_signal"`
	SignalID uint `json:"signalId" gorm:"not null;uniqueIndex:idx_device_signal"`
	Count    int  `json:"count" gorm:"default:1;check:count >= 0"`
}
