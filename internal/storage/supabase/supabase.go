// Package supabase stores collections in a hosted Postgres table through the
// Supabase REST API.
//
// The table needs the columns owner text, key text, value jsonb and
// updated_at timestamptz, with a unique constraint on (owner, key).
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/supabase-community/supabase-go"

	"fintrack/internal/storage"
)

const DefaultTable = "app_state"

type Store struct {
	client *supabase.Client
	table  string
	owner  string
}

type row struct {
	Owner     string          `json:"owner"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// New connects to the project at url. Rows are scoped to owner so several
// users can share one table.
func New(url, key, table, owner string) (*Store, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	if table == "" {
		table = DefaultTable
	}
	return &Store{client: client, table: table, owner: owner}, nil
}

func (s *Store) Load(ctx context.Context, key string, dst any) (bool, error) {
	data, _, err := s.client.From(s.table).
		Select("value", "", false).
		Eq("owner", s.owner).
		Eq("key", key).
		Execute()
	if err != nil {
		return false, fmt.Errorf("%w: select %s: %v", storage.ErrStorage, key, err)
	}

	var rows []row
	if err := json.Unmarshal(data, &rows); err != nil {
		return false, fmt.Errorf("%w: parse %s: %v", storage.ErrStorage, key, err)
	}
	if len(rows) == 0 || len(rows[0].Value) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(rows[0].Value, dst); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", storage.ErrStorage, key, err)
	}
	return true, nil
}

func (s *Store) Save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", storage.ErrStorage, key, err)
	}
	r := row{Owner: s.owner, Key: key, Value: raw, UpdatedAt: time.Now().UTC()}
	_, count, err := s.client.From(s.table).
		Insert(r, true, "owner,key", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", storage.ErrStorage, key, err)
	}

	slog.DebugContext(ctx, "Collection saved to Supabase", "table", s.table, "key", key, "count", count)
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	_, _, err := s.client.From(s.table).Select("key", "", false).Limit(1, "").Execute()
	if err != nil {
		return fmt.Errorf("%w: ping: %v", storage.ErrStorage, err)
	}
	return nil
}
