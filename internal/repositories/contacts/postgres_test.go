package contacts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/agenda/internal/common"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var columns = []string{"id", "owner_identifier", "owner_user_id", "name", "phone", "address", "age",
	"hobbies", "latitude", "longitude", "profile_image", "created_at"}

func TestPostgres_ListByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+contacts\s+WHERE\s+owner_identifier\s*=\s*\$1\s+ORDER\s+BY\s+id$`
	rows := sqlmock.NewRows(columns).
		AddRow("c1", "ana@x.com", "u1", "Bob", "555", nil, int64(30), "", 1.5, 2.5, nil, int64(0))
	mock.ExpectQuery(q).WithArgs("ana@x.com").WillReturnRows(rows)

	got, err := repo.ListByOwner(context.Background(), "ana@x.com")
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Bob" || *got[0].Age != 30 || got[0].Hobbies != nil || *got[0].OwnerUserID != "u1" {
		t.Fatalf("unexpected contacts: %+v", got)
	}
}

func TestPostgres_ListByOwner_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+contacts`).WillReturnError(errors.New("db down"))

	_, err := repo.ListByOwner(context.Background(), "ana@x.com")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgres_ReassignOwner_CaseInsensitive(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+contacts\s+SET\s+owner_identifier\s*=\s*\$1\s+WHERE\s+lower\(owner_identifier\)\s*=\s*lower\(\$2\)$`
	mock.ExpectExec(q).WithArgs("ana@x.com", "ana").WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.ReassignOwner(context.Background(), "ana", "ana@x.com")
	if err != nil || n != 4 {
		t.Fatalf("ReassignOwner = %d, %v", n, err)
	}
}

func TestPostgres_Delete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+contacts\s+WHERE\s+id\s*=\s*\$1\s+AND\s+owner_identifier\s*=\s*\$2$`
	mock.ExpectExec(q).WithArgs("c9", "ana@x.com").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "ana@x.com", "c9"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}
