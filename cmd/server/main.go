package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Nestert/AsuOpt-sub000/config"
	"github.com/Nestert/AsuOpt-sub000/internal/routes"
)

func main() {
	// .env удобен при локальной разработке; в бою переменные задает окружение.
	_ = godotenv.Load()

	if err := config.Load("config.toml"); err != nil {
		slog.Error("Ошибка чтения конфигурации", "error", err)
		os.Exit(1)
	}

	config.ConnectDB()
	config.ConnectRedis()

	r := gin.Default()
	routes.SetupRoutes(r)

	slog.Info("Сервер запускается", "addr", config.App.ListenAddr)
	if err := r.Run(config.App.ListenAddr); err != nil {
		slog.Error("Сервер остановлен с ошибкой", "error", err)
		os.Exit(1)
	}
}
