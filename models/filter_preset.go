package models

import "time"

// FilterPreset — именованный набор фильтров таблицы устройств. Хранится в БД
// (а не в localStorage клиента), чтобы пресеты переживали смену браузера.
// Payload — произвольный JSON с фильтрами, сервер его не интерпретирует.
type FilterPreset struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Owner     string    `json:"owner" gorm:"not null;uniqueIndex:idx_preset_owner_name"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex:idx_preset_owner_name"`
	ProjectID uint      `json:"projectId" gorm:"uniqueIndex:idx_preset_owner_name"`
	Payload   string    `json:"payload" gorm:"type:jsonb;default:'{}'"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
