package signals

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nestert/AsuOpt-sub000/internal/apperr"
)

func expectAssignQueries(mock sqlmock.Sqlmock, insertedIDs ...int64) {
	mock.ExpectBegin()

	mock.ExpectQuery(`SELECT \* FROM "signals" WHERE category = \$1`).
		WithArgs("Расходомер").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "signal_type", "category"}).
			AddRow(31, "Расход мгновенный", "AI", "Расходомер"))

	mock.ExpectQuery(`SELECT \* FROM "devices" WHERE device_type = \$1`).
		WithArgs("Расходомер").
		WillReturnRows(sqlmock.NewRows([]string{"id", "device_type"}).
			AddRow(10, "Расходомер").
			AddRow(11, "Расходомер"))

	// Строка счётчика типа уже существует — FirstOrCreate ничего не вставляет.
	mock.ExpectQuery(`SELECT \* FROM "device_type_signals" WHERE device_type = \$1`).
		WithArgs("Расходомер", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "device_type"}).
			AddRow(1, "Расходомер"))

	idRows := sqlmock.NewRows([]string{"id"})
	for _, id := range insertedIDs {
		idRows.AddRow(id)
	}
	mock.ExpectQuery(`INSERT INTO "device_signals" .* ON CONFLICT \("device_id","signal_id"\) DO NOTHING`).
		WillReturnRows(idRows)

	mock.ExpectExec(`UPDATE signals SET total_count`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectCommit()
}

func TestAssignToType_TwoDevicesOneSignal(t *testing.T) {
	db, mock, gdb := setupMockDB(t)
	defer db.Close()

	expectAssignQueries(mock, 100, 101)

	svc := NewAssignmentService(gdb)
	assigned, err := svc.AssignToType("Расходомер", nil)

	require.NoError(t, err)
	assert.Equal(t, 2, assigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignToType_SecondRunAssignsNothing(t *testing.T) {
	db, mock, gdb := setupMockDB(t)
	defer db.Close()

	// Повторный запуск: все пары уже существуют, ON CONFLICT ничего не вставил.
	expectAssignQueries(mock)

	svc := NewAssignmentService(gdb)
	assigned, err := svc.AssignToType("Расходомер", nil)

	require.NoError(t, err)
	assert.Equal(t, 0, assigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignToType_NoSignalsForType(t *testing.T) {
	db, mock, gdb := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "signals" WHERE category = \$1`).
		WithArgs("Манометр").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "signal_type", "category"}))
	mock.ExpectRollback()

	svc := NewAssignmentService(gdb)
	_, err := svc.AssignToType("Манометр", nil)

	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "no-signals-for-type", notFound.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignToType_NoDevicesForType(t *testing.T) {
	db, mock, gdb := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "signals" WHERE category = \$1`).
		WithArgs("Манометр").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "signal_type", "category"}).
			AddRow(5, "Давление", "AI", "Манометр"))
	mock.ExpectQuery(`SELECT \* FROM "devices" WHERE device_type = \$1`).
		WithArgs("Манометр").
		WillReturnRows(sqlmock.NewRows([]string{"id", "device_type"}))
	mock.ExpectRollback()

	svc := NewAssignmentService(gdb)
	_, err := svc.AssignToType("Манометр", nil)

	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "no-devices-for-type", notFound.Kind)
}

func TestAssignToType_EmptyTypeRejected(t *testing.T) {
	db, _, gdb := setupMockDB(t)
	defer db.Close()

	svc := NewAssignmentService(gdb)
	_, err := svc.AssignToType("", nil)

	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestAssignToAllTypes_OneFailureDoesNotAbortOthers(t *testing.T) {
	db, mock, gdb := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT DISTINCT "category" FROM "signals" WHERE category <> ''`).
		WillReturnRows(sqlmock.NewRows([]string{"category"}).
			AddRow("Расходомер").
			AddRow("Манометр"))

	// "Манометр" идёт первым по сортировке: устройств нет — тип падает.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "signals" WHERE category = \$1`).
		WithArgs("Манометр").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "signal_type", "category"}).
			AddRow(5, "Давление", "AI", "Манометр"))
	mock.ExpectQuery(`SELECT \* FROM "devices" WHERE device_type = \$1`).
		WithArgs("Манометр").
		WillReturnRows(sqlmock.NewRows([]string{"id", "device_type"}))
	mock.ExpectRollback()

	// "Расходомер" назначается успешно.
	expectAssignQueries(mock, 100)

	svc := NewAssignmentService(gdb)
	result, err := svc.AssignToAllTypes(nil)

	require.NoError(t, err)
	assert.Equal(t, 1, result.TypesSucceeded)
	assert.Equal(t, 1, result.TypesFailed)
	assert.Equal(t, 1, result.AssignedCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
