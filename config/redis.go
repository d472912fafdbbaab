package config

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client
var Ctx = context.Background()

// ConnectRedis поднимает клиент Redis для хранения отчётов импорта.
// Redis необязателен: без него отчёты доступны только в ответе на загрузку.
func ConnectRedis() {
	if App.RedisAddr == "" {
		slog.Warn("REDIS_ADDR не задан, хранение отчётов импорта отключено.")
		return
	}

	RDB = redis.NewClient(&redis.Options{
		Addr: App.RedisAddr,
	})

	// Проверяем соединение
	if _, err := RDB.Ping(Ctx).Result(); err != nil {
		slog.Error("Не удалось подключиться к Redis", "error", err)
		RDB = nil // Обнуляем клиент, чтобы приложение не пыталось его использовать
		return
	}

	slog.Info("Успешное подключение к Redis!")
}
