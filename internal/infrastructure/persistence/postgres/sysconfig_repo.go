package postgres

import (
	"context"
	"fmt"
	"time"
)

// SystemConfigRepository implements sysconfig.Store on the system_config
// key/value table.
type SystemConfigRepository struct {
	q Querier
}

// NewSystemConfigRepository creates a new SystemConfigRepository.
func NewSystemConfigRepository(q Querier) *SystemConfigRepository {
	return &SystemConfigRepository{q: q}
}

// Get returns the value of key. A missing key reports found == false.
func (r *SystemConfigRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.q.QueryRow(ctx, "SELECT value FROM system_config WHERE key = $1", key).Scan(&value)
	if IsNoRows(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes the value of key.
func (r *SystemConfigRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO system_config (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}
