package repository

import (
	"context"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/kv"
)

const kvTable = "kv"

// KVStore is the relational kv.Store backend.
type KVStore struct {
	db     *DB
	logger *slog.Logger
}

var _ kv.Store = (*KVStore)(nil)

func NewKVStore(db *DB, logger *slog.Logger) *KVStore {
	return &KVStore{db: db, logger: logger}
}

func kvError(message string, err error) error {
	if isTransient(err) {
		return common.RetryableError(message, err)
	}
	return common.DatabaseError(message, err)
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	q, args := s.db.builder().Select("value").
		From(entsql.Table(kvTable)).
		Where(entsql.EQ("key", key)).
		Query()
	var (
		value string
		found bool
	)
	err := query(ctx, s.db.Driver, q, args, func(rows *entsql.Rows) error {
		found = true
		return rows.Scan(&value)
	})
	if err != nil {
		s.logger.Error("failed to read kv entry", "key", key, "error", err)
		return nil, kvError("failed to read kv entry", err)
	}
	if !found {
		return nil, kv.ErrNotFound
	}
	return []byte(value), nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	q, args := s.db.builder().Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(key, string(value), toMillis(time.Now())).
		OnConflict(entsql.ConflictColumns("key"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := exec(ctx, s.db.Driver, q, args); err != nil {
		s.logger.Error("failed to write kv entry", "key", key, "error", err)
		return kvError("failed to write kv entry", err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	q, args := s.db.builder().Delete(kvTable).
		Where(entsql.EQ("key", key)).
		Query()
	if _, err := exec(ctx, s.db.Driver, q, args); err != nil {
		s.logger.Error("failed to delete kv entry", "key", key, "error", err)
		return kvError("failed to delete kv entry", err)
	}
	return nil
}

func (s *KVStore) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	q, args := s.db.builder().Select("key", "value").
		From(entsql.Table(kvTable)).
		Where(entsql.HasPrefix("key", prefix)).
		Query()
	out := make(map[string][]byte)
	err := query(ctx, s.db.Driver, q, args, func(rows *entsql.Rows) error {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		out[k] = []byte(v)
		return nil
	})
	if err != nil {
		s.logger.Error("failed to list kv entries", "prefix", prefix, "error", err)
		return nil, common.DatabaseError("failed to list kv entries", err)
	}
	return out, nil
}
