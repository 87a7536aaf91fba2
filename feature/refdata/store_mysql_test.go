package refdata

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"ticket-etl/core/sync"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func mockBatch() []sync.Record {
	updated := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	return []sync.Record{
		userRecord("u1", "avery", updated),
		userRecord("u2", "beck", updated.Add(time.Hour)),
	}
}

func TestUpsertBatchIsOneTransaction(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, Users)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sys_user`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := store.UpsertBatch(context.Background(), mockBatch())

	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertBatchRollsBackOnError(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, Users)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sys_user`").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	n, err := store.UpsertBatch(context.Background(), mockBatch())

	assert.Error(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
