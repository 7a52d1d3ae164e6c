// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/tripkeep/go-trip-keeper/internal/logger"
)

func newTestKVStore(t *testing.T) (*sqliteKVStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	kv := &sqliteKVStore{
		DB:     &DB{DB: db, logger: l},
		logger: l,
	}
	return kv, mock, db
}

func TestSQLiteKVStore_Get_Success(t *testing.T) {
	kv, mock, db := newTestKVStore(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"id":"rec-1"}`))
	mock.ExpectQuery("SELECT value").
		WithArgs("record/rec-1").
		WillReturnRows(rows)

	got, err := kv.Get(context.Background(), "record/rec-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != `{"id":"rec-1"}` {
		t.Errorf("unexpected value: %s", got)
	}
}

func TestSQLiteKVStore_Get_NotFound(t *testing.T) {
	kv, mock, db := newTestKVStore(t)
	defer db.Close()

	mock.ExpectQuery("SELECT value").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := kv.Get(context.Background(), "missing")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestSQLiteKVStore_Get_ScanError(t *testing.T) {
	kv, mock, db := newTestKVStore(t)
	defer db.Close()

	mock.ExpectQuery("SELECT value").
		WithArgs("broken").
		WillReturnError(errors.New("disk I/O error"))

	_, err := kv.Get(context.Background(), "broken")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("storage failure must not look like a miss: %v", err)
	}
}

func TestSQLiteKVStore_Put_Upsert(t *testing.T) {
	kv, mock, db := newTestKVStore(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO kv").
		WithArgs("pending", []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := kv.Put(context.Background(), "pending", []byte(`[]`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSQLiteKVStore_Put_ExecError(t *testing.T) {
	kv, mock, db := newTestKVStore(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO kv").
		WithArgs("pending", []byte(`[]`)).
		WillReturnError(errors.New("database is locked"))

	if err := kv.Put(context.Background(), "pending", []byte(`[]`)); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestSQLiteKVStore_Delete(t *testing.T) {
	kv, mock, db := newTestKVStore(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM kv").
		WithArgs("list").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := kv.Delete(context.Background(), "list"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSQLiteKVStore_Keys(t *testing.T) {
	kv, mock, db := newTestKVStore(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"key"}).
		AddRow("record/a").
		AddRow("record/b")
	mock.ExpectQuery("SELECT key").
		WithArgs("record/").
		WillReturnRows(rows)

	keys, err := kv.Keys(context.Background(), "record/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 || keys[0] != "record/a" || keys[1] != "record/b" {
		t.Errorf("unexpected keys: %v", keys)
	}
}

func TestSQLiteKVStore_GetMany(t *testing.T) {
	kv, mock, db := newTestKVStore(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"key", "value"}).
		AddRow("record/a", []byte("1")).
		AddRow("record/b", []byte("2"))
	mock.ExpectQuery("SELECT key, value FROM kv").
		WithArgs("record/a", "record/b", "record/missing").
		WillReturnRows(rows)

	values, err := kv.GetMany(context.Background(), []string{"record/a", "record/b", "record/missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("expected 2 values, got %d", len(values))
	}
	if string(values["record/a"]) != "1" {
		t.Errorf("unexpected value for record/a: %s", values["record/a"])
	}
}

func TestSQLiteKVStore_GetMany_EmptyKeysSkipsQuery(t *testing.T) {
	kv, mock, db := newTestKVStore(t)
	defer db.Close()

	values, err := kv.GetMany(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("expected empty result, got %v", values)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no query should have been issued: %v", err)
	}
}
