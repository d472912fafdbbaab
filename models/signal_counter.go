package models

// DeviceTypeSignal — денормализованный счётчик сигналов по типу устройства.
// Таблица глобальная (без project_id) и независима от назначений: при чтении
// сводки данные назначений имеют приоритет, счётчик — резервное значение.
type DeviceTypeSignal struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	DeviceType string `json:"deviceType" gorm:"uniqueIndex;not null"`
	AiCount    int    `json:"aiCount" gorm:"default:0"`
	AoCount    int    `json:"aoCount" gorm:"default:0"`
	DiCount    int    `json:"diCount" gorm:"default:0"`
	DoCount    int    `json:"doCount" gorm:"default:0"`
}
