package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTableColumns(t *testing.T) {
	cfg := Config{
		Driver: "sqlite",
		Name:   ":memory:",
	}
	db, err := Connect(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, db)

	err = db.Exec("CREATE TABLE sys_user (sys_id TEXT PRIMARY KEY, name TEXT, etl_hash TEXT)").Error
	assert.NoError(t, err)

	columns, err := GetTableColumns(db, "sys_user")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}

	assert.Equal(t, "text", colMap["sys_id"])
	assert.Equal(t, "text", colMap["etl_hash"])

	// PRAGMA table_info returns an empty result for a missing table
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestHasColumn(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	assert.NoError(t, err)

	err = db.Exec("CREATE TABLE sys_company (sys_id TEXT PRIMARY KEY, name TEXT)").Error
	assert.NoError(t, err)

	ok, err := HasColumn(db, "sys_company", "sys_id")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = HasColumn(db, "sys_company", "etl_hash")
	assert.NoError(t, err)
	assert.False(t, ok)
}
