// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/tripkeep/go-trip-keeper/internal/logger"
)

type sqliteKVStore struct {
	*DB
	logger *logger.Logger
}

// NewSQLiteKVStore wraps an open database connection in the [KVStore] port.
// The kv table is created by the goose migrations run at connect time.
func NewSQLiteKVStore(db *DB, logger *logger.Logger) KVStore {
	return &sqliteKVStore{
		DB:     db,
		logger: logger,
	}
}

func (s *sqliteKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	log := logger.FromContext(ctx)

	var value []byte
	row := s.DB.QueryRowContext(ctx, getKV, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		log.Err(err).
			Str("func", "sqliteKVStore.Get").
			Str("key", key).
			Msg("failed to scan kv row")
		return nil, fmt.Errorf("failed to get value (key=%s): %w", key, err)
	}

	return value, nil
}

func (s *sqliteKVStore) Put(ctx context.Context, key string, value []byte) error {
	log := logger.FromContext(ctx)

	_, err := s.DB.ExecContext(ctx, upsertKV, key, value)
	if err != nil {
		log.Err(err).
			Str("func", "sqliteKVStore.Put").
			Str("key", key).
			Msg("failed to execute upsert for kv entry")
		return fmt.Errorf("failed to put value (key=%s): %w", key, err)
	}

	return nil
}

func (s *sqliteKVStore) Delete(ctx context.Context, key string) error {
	log := logger.FromContext(ctx)

	_, err := s.DB.ExecContext(ctx, deleteKV, key)
	if err != nil {
		log.Err(err).
			Str("func", "sqliteKVStore.Delete").
			Str("key", key).
			Msg("failed to execute delete for kv entry")
		return fmt.Errorf("failed to delete value (key=%s): %w", key, err)
	}

	return nil
}

func (s *sqliteKVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	log := logger.FromContext(ctx)

	rows, err := s.DB.QueryContext(ctx, keysKV, prefix)
	if err != nil {
		log.Err(err).
			Str("func", "sqliteKVStore.Keys").
			Str("prefix", prefix).
			Msg("failed to execute query for kv keys")
		return nil, fmt.Errorf("failed to query keys (prefix=%s): %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if scanErr := rows.Scan(&key); scanErr != nil {
			log.Err(scanErr).
				Str("func", "sqliteKVStore.Keys").
				Msg("failed to scan kv key row")
			return nil, fmt.Errorf("failed to scan key row: %w", scanErr)
		}
		keys = append(keys, key)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "sqliteKVStore.Keys").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating key rows: %w", rowsErr)
	}

	return keys, nil
}

func (s *sqliteKVStore) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	log := logger.FromContext(ctx)

	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	query, args, err := sq.Select("key", "value").
		From("kv").
		Where(sq.Eq{"key": keys}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "sqliteKVStore.GetMany").
			Msg("failed to build multi-key query")
		return nil, fmt.Errorf("failed to build multi-key query: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "sqliteKVStore.GetMany").
			Int("keys", len(keys)).
			Msg("failed to execute multi-key query")
		return nil, fmt.Errorf("failed to query values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value []byte
		if scanErr := rows.Scan(&key, &value); scanErr != nil {
			log.Err(scanErr).
				Str("func", "sqliteKVStore.GetMany").
				Msg("failed to scan kv row")
			return nil, fmt.Errorf("failed to scan kv row: %w", scanErr)
		}
		result[key] = value
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "sqliteKVStore.GetMany").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating kv rows: %w", rowsErr)
	}

	return result, nil
}

func (s *sqliteKVStore) Close() error {
	return s.DB.DB.Close()
}
