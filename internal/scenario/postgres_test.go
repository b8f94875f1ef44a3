package scenario

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewPostgresStore(db)
	require.NoError(t, err)
	return store, mock
}

func TestPostgresStoreSave(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	ctx := context.Background()

	sc := testScenario("pg-cycle", 400)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO scenarios").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow("11111111-2222-3333-4444-555555555555", now))

	require.NoError(t, store.Save(ctx, sc))
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", sc.ID)
	assert.Equal(t, now, sc.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSaveRejectsInvalid(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	err := store.Save(context.Background(), &Scenario{Name: "no-input"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet(), "invalid scenario must not reach the database")
}

func TestPostgresStoreGet(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	ctx := context.Background()

	sc := testScenario("stored", 250)
	inputJSON, err := json.Marshal(sc.Input)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "input", "created_at", "updated_at"}).
		AddRow("id-1", "stored", "test scenario", string(inputJSON), time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM scenarios").
		WithArgs("id-1").
		WillReturnRows(rows)

	got, err := store.Get(ctx, "id-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "stored", got.Name)
	assert.Equal(t, 250.0, got.Input.Regimen.Compounds[0].WeeklyMg)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetMissing(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectQuery("SELECT (.+) FROM scenarios").
		WithArgs("absent").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "input", "created_at", "updated_at"}))

	got, err := store.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreListAndCount(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	ctx := context.Background()

	sc := testScenario("listed", 150)
	inputJSON, err := json.Marshal(sc.Input)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM scenarios").
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "input", "created_at", "updated_at"}).
			AddRow("id-1", "listed", "", string(inputJSON), time.Now(), time.Now()))

	list, err := store.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "listed", list[0].Name)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreDelete(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectExec("DELETE FROM scenarios").
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), "id-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
