package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrationsCreatesEveryTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range schemaStatements {
		mock.ExpectExec(regexp.QuoteMeta(stmt.query)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	err = RunMigrations(context.Background(), sqlx.NewDb(db, "sqlmock"), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsStopsOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS school_settings").WillReturnError(errors.New("permission denied"))

	err = RunMigrations(context.Background(), sqlx.NewDb(db, "sqlmock"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate school_settings")
}
