package models

import "time"

// Типы данных устройства: определяют, какая детальная запись (КИП или ЗРА)
// сопровождает запись справочника.
const (
	DataTypeKip = "kip"
	DataTypeZra = "zra"
)

// Device — запись справочника оборудования. Единая сущность с одним ключом:
// детальные записи (Kip/Zra) и назначения сигналов ссылаются на devices.id напрямую.
type Device struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	PositionCode  string    `json:"positionCode" gorm:"index"`
	EquipmentCode string    `json:"equipmentCode" gorm:"index"`
	DeviceType    string    `json:"deviceType" gorm:"index"`
	Description   string    `json:"description"`
	DataType      string    `json:"dataType" gorm:"default:'kip'"`
	ParentID      *uint     `json:"parentId,omitempty"`
	ProjectID     uint      `json:"projectId" gorm:"index;not null"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Связи
	Kip *Kip `json:"kip,omitempty" gorm:"foreignKey:DeviceID"`
	Zra *Zra `json:"zra,omitempty" gorm:"foreignKey:DeviceID"`
}

// Kip — детальная запись контрольно-измерительного прибора.
type Kip struct {
	ID               uint   `json:"id" gorm:"primaryKey"`
	DeviceID         uint   `json:"deviceId" gorm:"uniqueIndex;not null"`
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

// Zra — детальная запись запорно-регулирующей арматуры.
type Zra struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	DeviceID        uint   `json:"deviceId" gorm:"uniqueIndex;not null"`
	ValveType       string `json:"valveType"`
	Manufacturer    string `json:"manufacturer"`
	Model           string `json:"model"`
	NominalBore     string `json:"nominalBore"`     // DN
	NominalPressure string `json:"nominalPressure"` // PN
	ActuatorType    string `json:"actuatorType"`
	ControlSignal   string `json:"controlSignal"`
	FailSafePos     string `json:"failSafePos"`
}
