package importer

import (
	"strings"

	"github.com/Nestert/AsuOpt-sub000/models"
)

// signalTypeTokens — явная таблица соответствия «токен из колонки импорта →
// тип сигнала». Токены сверяются после нормализации (верхний регистр, сжатые
// пробелы). Неизвестный токен — предупреждение импорта, строка пропускается;
// угадывания по подстрокам нет.
var signalTypeTokens = map[string]string{
	// Канонические коды
	"AI": models.SignalAI,
	"AO": models.SignalAO,
	"DI": models.SignalDI,
	"DO": models.SignalDO,

	// Кириллические варианты из старых ведомостей
	"АИ":   models.SignalAI,
	"АО":   models.SignalAO,
	"ДИ":   models.SignalDI,
	"ДО":   models.SignalDO,
	"ВХА":  models.SignalAI,
	"ВЫХА": models.SignalAO,

	// Развернутые наименования
	"АНАЛОГОВЫЙ ВХОД":  models.SignalAI,
	"АНАЛОГОВЫЙ ВЫХОД": models.SignalAO,
	"ДИСКРЕТНЫЙ ВХОД":  models.SignalDI,
	"ДИСКРЕТНЫЙ ВЫХОД": models.SignalDO,
	"ANALOG INPUT":     models.SignalAI,
	"ANALOG OUTPUT":    models.SignalAO,
	"DIGITAL INPUT":    models.SignalDI,
	"DIGITAL OUTPUT":   models.SignalDO,

	// Токовая петля в колонке типа означает аналоговый сигнал
	"4-20":    models.SignalAI,
	"4-20 МА": models.SignalAI,
	"4-20 MA": models.SignalAI,
}

// NormalizeSignalType переводит свободный токен импорта в канонический тип
// сигнала. Второй результат false — токен не известен таблице.
func NormalizeSignalType(token string) (string, bool) {
	key := strings.ToUpper(strings.Join(strings.Fields(token), " "))
	st, ok := signalTypeTokens[key]
	return st, ok
}
