package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig — настройки сервера. Источники по возрастанию приоритета:
// значения по умолчанию, файл config.toml, переменные окружения.
type AppConfig struct {
	ListenAddr  string `toml:"listen_addr"`
	DatabaseURL string `toml:"database_url"`
	RedisAddr   string `toml:"redis_addr"`
}

// App — загруженная конфигурация приложения.
var App AppConfig

// Load читает конфигурацию. Отсутствие config.toml — не ошибка: всё можно
// задать окружением. Битый TOML — фатален.
func Load(path string) error {
	App = AppConfig{
		ListenAddr: ":8080",
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Info("Файл конфигурации не найден, используются окружение и значения по умолчанию", "path", path)
	case err != nil:
		return err
	default:
		if err := toml.Unmarshal(data, &App); err != nil {
			return err
		}
	}

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		App.ListenAddr = v
	}
	if v := os.Getenv("DB_URL"); v != "" {
		App.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		App.RedisAddr = v
	}
	return nil
}
