package metadata

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestPostgres_SetUsesNumberedPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	r := NewPostgresRepository(db)

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+metadata\s*\(key,\s*value\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT`).
		WithArgs("flag", []byte("1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT\s+value\s+FROM\s+metadata\s+WHERE\s+key\s*=\s*\$1`).
		WithArgs("flag").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte("1")))

	require.NoError(t, r.Set(context.Background(), "flag", []byte("1")))
	v, err := r.Get(context.Background(), "flag")
	require.NoError(t, err)
	require.Equal(t, []byte("1"), v)
	require.NoError(t, mock.ExpectationsWereMet())
}
