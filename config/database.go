package config

import (
	"log/slog"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Nestert/AsuOpt-sub000/models"
)

var DB *gorm.DB

// ConnectDB подключается к Postgres и мигрирует схему справочников.
// Без БД приложению делать нечего, поэтому любой сбой здесь фатален.
func ConnectDB() {
	dsn := App.DatabaseURL
	if dsn == "" {
		slog.Error("Критическая ошибка: не задан DSN базы данных (DB_URL или database_url в config.toml).")
		os.Exit(1)
	}

	// TranslateError превращает нарушения уникальных индексов в
	// gorm.ErrDuplicatedKey — обработчики отвечают на них 409.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		slog.Error("Ошибка подключения к БД", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.Project{},
		&models.Device{},
		&models.Kip{},
		&models.Zra{},
		&models.Signal{},
		&models.DeviceSignal{},
		&models.DeviceTypeSignal{},
		&models.FilterPreset{},
	); err != nil {
		slog.Error("Ошибка миграции схемы", "error", err)
		os.Exit(1)
	}

	DB = db
	slog.Info("Успешное подключение к базе данных!")
}
