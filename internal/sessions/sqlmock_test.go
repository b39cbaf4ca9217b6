package sessions

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/agentrt/runtime/pkg/chatmodel"
)

// TestSQLiteStoreAppendUsesTransaction exercises the exact statement
// sequence Append issues (seq lookup, prepared insert, commit) against a
// mocked driver, the way the teacher pack tests SQL-backed stores without a
// real database file.
func TestSQLiteStoreAppendUsesTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := newWithDB(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(seq\), -1\) \+ 1 FROM session_messages WHERE session_id = \?`).
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(0))
	mock.ExpectPrepare(`INSERT INTO session_messages`)
	mock.ExpectExec(`INSERT INTO session_messages`).
		WithArgs("sess-1", int64(0), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	msgs := []chatmodel.Message{chatmodel.NewMessage(chatmodel.RoleUser, "hello")}
	if err := store.Append(context.Background(), "sess-1", msgs); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestSQLiteStoreAppendRollsBackOnInsertError verifies a failed insert
// rolls the transaction back rather than committing a partial batch.
func TestSQLiteStoreAppendRollsBackOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := newWithDB(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(seq\), -1\) \+ 1 FROM session_messages WHERE session_id = \?`).
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(0))
	mock.ExpectPrepare(`INSERT INTO session_messages`)
	mock.ExpectExec(`INSERT INTO session_messages`).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	msgs := []chatmodel.Message{chatmodel.NewMessage(chatmodel.RoleUser, "hello")}
	if err := store.Append(context.Background(), "sess-1", msgs); err == nil {
		t.Fatalf("expected Append to return an error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
