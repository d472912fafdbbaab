package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// У КИП заполнена детальная запись kip и пуст zra, у ЗРА — наоборот.
func TestGetDeviceHandler_DetailRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := useMockDB(t)

	r := gin.New()
	r.GET("/api/devices/:id", GetDeviceHandler)

	deviceCols := []string{"id", "position_code", "equipment_code", "device_type", "description", "data_type", "project_id"}

	mock.ExpectQuery(`SELECT \* FROM "devices" WHERE "devices"\."id" = \$1`).
		WithArgs("7", 1).
		WillReturnRows(sqlmock.NewRows(deviceCols).
			AddRow(7, "FT-101", "A.1-B-C-D.1", "Расходомер", "", "kip", 1))
	mock.ExpectQuery(`SELECT \* FROM "kips" WHERE "kips"\."device_id" = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "device_id", "manufacturer"}).
			AddRow(1, 7, "Метран"))
	mock.ExpectQuery(`SELECT \* FROM "zras" WHERE "zras"\."device_id" = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "device_id"}))

	w := doJSON(t, r, http.MethodGet, "/api/devices/7", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	require.NotNil(t, body["kip"])
	assert.Equal(t, "Метран", body["kip"].(map[string]any)["manufacturer"])
	assert.Nil(t, body["zra"])

	mock.ExpectQuery(`SELECT \* FROM "devices" WHERE "devices"\."id" = \$1`).
		WithArgs("8", 1).
		WillReturnRows(sqlmock.NewRows(deviceCols).
			AddRow(8, "ZK-201", "A.1-B-C-E.1", "Задвижка", "", "zra", 1))
	mock.ExpectQuery(`SELECT \* FROM "kips" WHERE "kips"\."device_id" = \$1`).
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"id", "device_id"}))
	mock.ExpectQuery(`SELECT \* FROM "zras" WHERE "zras"\."device_id" = \$1`).
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"id", "device_id", "valve_type"}).
			AddRow(2, 8, "шаровой"))

	w = doJSON(t, r, http.MethodGet, "/api/devices/8", "")
	require.Equal(t, http.StatusOK, w.Code)

	body = decodeBody(t, w)
	assert.Nil(t, body["kip"])
	require.NotNil(t, body["zra"])
	assert.Equal(t, "шаровой", body["zra"].(map[string]any)["valveType"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDeviceHandler_CreatesDetailInOneTx(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := useMockDB(t)

	r := gin.New()
	r.POST("/api/devices", CreateDeviceHandler)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "devices"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`SELECT \* FROM "kips" WHERE device_id = \$1`).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "device_id"}))
	mock.ExpectQuery(`INSERT INTO "kips"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	// Перечитывание созданного устройства вместе с детальными записями.
	mock.ExpectQuery(`SELECT \* FROM "devices" WHERE "devices"\."id" = \$1`).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "position_code", "data_type", "project_id"}).
			AddRow(7, "FT-101", "kip", 1))
	mock.ExpectQuery(`SELECT \* FROM "kips" WHERE "kips"\."device_id" = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "device_id", "manufacturer"}).
			AddRow(1, 7, "Метран"))
	mock.ExpectQuery(`SELECT \* FROM "zras" WHERE "zras"\."device_id" = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "device_id"}))

	w := doJSON(t, r, http.MethodPost, "/api/devices",
		`{"positionCode":"FT-101","equipmentCode":"A.1-B-C-D.1","deviceType":"Расходомер",
		  "dataType":"kip","projectId":1,"kip":{"manufacturer":"Метран"}}`)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	require.NotNil(t, body["kip"])
	assert.Equal(t, "Метран", body["kip"].(map[string]any)["manufacturer"])
	assert.Nil(t, body["zra"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Удаление устройства уводит детальные записи и назначения той же транзакцией
// и пересчитывает суммы уцелевших сигналов.
func TestDeleteDeviceHandler_CascadesAndRecountsTotals(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := useMockDB(t)

	r := gin.New()
	r.DELETE("/api/devices/:id", DeleteDeviceHandler)

	mock.ExpectQuery(`SELECT \* FROM "devices" WHERE "devices"\."id" = \$1`).
		WithArgs("5", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "data_type", "project_id"}).
			AddRow(5, "kip", 1))

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "device_signals" WHERE device_id = \$1`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "kips" WHERE device_id = \$1`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "zras" WHERE device_id = \$1`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "devices" WHERE "devices"\."id" = \$1`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE signals SET total_count`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	w := doJSON(t, r, http.MethodDelete, "/api/devices/5", "")
	require.Equal(t, http.StatusOK, w.Code)

	removed := decodeBody(t, w)["removed"].(map[string]any)
	assert.Equal(t, float64(2), removed["deviceSignals"])
	assert.Equal(t, float64(1), removed["kips"])
	assert.Equal(t, float64(0), removed["zras"])
	assert.Equal(t, float64(1), removed["devices"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProjectHandler_PurgesAndRecountsTotals(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := useMockDB(t)

	r := gin.New()
	r.DELETE("/api/projects/:id", DeleteProjectHandler)

	mock.ExpectQuery(`SELECT \* FROM "projects" WHERE "projects"\."id" = \$1`).
		WithArgs("3", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name"}).
			AddRow(3, "sub000", "АСУ ТП"))

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "device_signals" WHERE device_id IN`).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM "kips" WHERE device_id IN`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "zras" WHERE device_id IN`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "devices" WHERE project_id = \$1`).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "signals" WHERE project_id = \$1`).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "filter_presets" WHERE project_id = \$1`).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "projects" WHERE "projects"\."id" = \$1`).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE signals SET total_count`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	w := doJSON(t, r, http.MethodDelete, "/api/projects/3", "")
	require.Equal(t, http.StatusOK, w.Code)

	removed := decodeBody(t, w)["removed"].(map[string]any)
	assert.Equal(t, float64(4), removed["deviceSignals"])
	assert.Equal(t, float64(2), removed["devices"])
	assert.Equal(t, float64(3), removed["signals"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearTableHandler_DevicesCascadeAndRecount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := useMockDB(t)

	r := gin.New()
	r.DELETE("/api/tables/:name", ClearTableHandler)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "device_signals" WHERE 1 = 1`).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(`DELETE FROM "kips" WHERE 1 = 1`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "zras" WHERE 1 = 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "devices" WHERE 1 = 1`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`UPDATE signals SET total_count`).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	w := doJSON(t, r, http.MethodDelete, "/api/tables/devices", "")
	require.Equal(t, http.StatusOK, w.Code)

	removed := decodeBody(t, w)["removed"].(map[string]any)
	assert.Equal(t, float64(5), removed["device_signals"])
	assert.Equal(t, float64(3), removed["devices"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDeviceTypeSignalHandler_TypeFromPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := useMockDB(t)

	r := gin.New()
	r.PUT("/api/device-type-signals/:deviceType", UpdateDeviceTypeSignalHandler)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "device_type_signals" .+ ON CONFLICT \("device_type"\) DO UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	w := doJSON(t, r, http.MethodPut, "/api/device-type-signals/Расходомер",
		`{"aiCount":2,"aoCount":0,"diCount":1,"doCount":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Расходомер", body["deviceType"])
	assert.Equal(t, float64(2), body["aiCount"])

	assert.NoError(t, mock.ExpectationsWereMet())
}
