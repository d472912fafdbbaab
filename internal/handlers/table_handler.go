package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Nestert/AsuOpt-sub000/config"
	"github.com/Nestert/AsuOpt-sub000/internal/apperr"
	"github.com/Nestert/AsuOpt-sub000/internal/signals"
	"github.com/Nestert/AsuOpt-sub000/models"
)

// clearableTables — белый список таблиц для массовой очистки. Имена вне
// списка отклоняются, в SQL имя таблицы не подставляется никогда.
var clearableTables = map[string]func(tx *gorm.DB) *gorm.DB{
	"devices": func(tx *gorm.DB) *gorm.DB {
		return tx.Where("1 = 1").Delete(&models.Device{})
	},
	"kips": func(tx *gorm.DB) *gorm.DB {
		return tx.Where("1 = 1").Delete(&models.Kip{})
	},
	"zras": func(tx *gorm.DB) *gorm.DB {
		return tx.Where("1 = 1").Delete(&models.Zra{})
	},
	"signals": func(tx *gorm.DB) *gorm.DB {
		return tx.Where("1 = 1").Delete(&models.Signal{})
	},
	"device_signals": func(tx *gorm.DB) *gorm.DB {
		return tx.Where("1 = 1").Delete(&models.DeviceSignal{})
	},
	"device_type_signals": func(tx *gorm.DB) *gorm.DB {
		return tx.Where("1 = 1").Delete(&models.DeviceTypeSignal{})
	},
	"filter_presets": func(tx *gorm.DB) *gorm.DB {
		return tx.Where("1 = 1").Delete(&models.FilterPreset{})
	},
}

// dependentTables — что чистится вместе с таблицей, чтобы не оставалось
// висячих ссылок (назначения без устройств, детальные записи без устройств).
var dependentTables = map[string][]string{
	"devices": {"device_signals", "kips", "zras"},
	"signals": {"device_signals"},
}

// totalsAffected — очистка этих таблиц затрагивает назначения, после неё
// total_count сигналов пересчитывается в той же транзакции.
var totalsAffected = map[string]bool{
	"devices":        true,
	"signals":        true,
	"device_signals": true,
}

// ClearTableHandler очищает таблицу из белого списка вместе с зависимыми.
// Ответ — число удалённых строк по каждой таблице.
func ClearTableHandler(c *gin.Context) {
	name := c.Param("name")
	clear, ok := clearableTables[name]
	if !ok {
		RespondError(c, apperr.NotFound("table", "Таблица %q не найдена или не подлежит очистке", name))
		return
	}

	removed := gin.H{}
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		for _, dep := range dependentTables[name] {
			res := clearableTables[dep](tx)
			if res.Error != nil {
				return res.Error
			}
			removed[dep] = res.RowsAffected
		}
		res := clear(tx)
		if res.Error != nil {
			return res.Error
		}
		removed[name] = res.RowsAffected

		if totalsAffected[name] {
			return signals.RecountTotals(tx)
		}
		return nil
	})
	if err != nil {
		RespondError(c, apperr.Persistence("очистка таблицы", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Таблица очищена", "removed": removed})
}
