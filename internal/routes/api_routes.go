package routes

import (
	"github.com/Nestert/AsuOpt-sub000/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes регистрирует все маршруты API.
func RegisterAPIRoutes(api *gin.RouterGroup) {
	apiGroup := api.Group("/api")
	{
		// --- ПРОЕКТЫ ---
		projects := apiGroup.Group("/projects")
		{
			projects.GET("", handlers.ListProjectsHandler)
			projects.POST("", handlers.CreateProjectHandler)
			projects.GET("/:id", handlers.GetProjectHandler)
			projects.PUT("/:id", handlers.UpdateProjectHandler)
			projects.DELETE("/:id", handlers.DeleteProjectHandler)
		}

		// --- УСТРОЙСТВА ---
		devices := apiGroup.Group("/devices")
		{
			devices.GET("", handlers.ListDevicesHandler)
			devices.POST("", handlers.CreateDeviceHandler)
			devices.GET("/tree", handlers.DeviceTreeHandler)
			devices.GET("/types", handlers.DeviceTypesHandler)
			devices.GET("/:id", handlers.GetDeviceHandler)
			devices.PUT("/:id", handlers.UpdateDeviceHandler)
			devices.DELETE("/:id", handlers.DeleteDeviceHandler)
		}

		// --- СИГНАЛЫ ---
		signals := apiGroup.Group("/signals")
		{
			signals.GET("", handlers.ListSignalsHandler)
			signals.POST("", handlers.CreateSignalHandler)
			signals.GET("/summary", handlers.SignalsSummaryHandler)
			signals.POST("/assign-type/:deviceType", handlers.AssignSignalsToTypeHandler)
			signals.POST("/assign-all", handlers.AssignSignalsToAllTypesHandler)
			signals.PUT("/:id", handlers.UpdateSignalHandler)
			signals.DELETE("/:id", handlers.DeleteSignalHandler)
		}

		// --- РЕЗЕРВНЫЕ СЧЁТЧИКИ ТИПОВ ---
		typeSignals := apiGroup.Group("/device-type-signals")
		{
			typeSignals.PUT("/:deviceType", handlers.UpdateDeviceTypeSignalHandler)
			typeSignals.DELETE("/clear", handlers.ClearDeviceTypeSignalsHandler)
		}

		// --- ИМПОРТ / ЭКСПОРТ ---
		importGroup := apiGroup.Group("/import")
		{
			importGroup.POST("/devices", handlers.ImportDevicesHandler)
			importGroup.POST("/signals", handlers.ImportSignalsHandler)
			importGroup.GET("/report/:id", handlers.GetImportReportHandler)
		}
		apiGroup.GET("/export/devices", handlers.ExportDevicesHandler)

		// --- ПРЕСЕТЫ ФИЛЬТРОВ ---
		presets := apiGroup.Group("/presets")
		{
			presets.GET("", handlers.ListFilterPresetsHandler)
			presets.POST("", handlers.SaveFilterPresetHandler)
			presets.DELETE("/:id", handlers.DeleteFilterPresetHandler)
		}

		// --- СЛУЖЕБНОЕ ---
		apiGroup.DELETE("/tables/:name", handlers.ClearTableHandler)
	}
}
