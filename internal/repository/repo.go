package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sonroyaalmerol/hibiki/internal/media"
)

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) GetSettings(ctx context.Context) (*Settings, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT default_volume, radio_enabled, cooldown_until
	FROM settings WHERE id = 1`)

	var s Settings
	var radio int
	if err := row.Scan(&s.DefaultVolume, &radio, &s.CooldownUntil); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	s.RadioEnabled = radio != 0
	return &s, nil
}

func (r *Repo) UpdateSettings(ctx context.Context, s *Settings) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE settings SET
		  default_volume=?,
		  radio_enabled=?,
		  cooldown_until=?
		WHERE id=1`,
		s.DefaultVolume, boolToInt(s.RadioEnabled), s.CooldownUntil,
	)
	return err
}

func (r *Repo) SetCooldownUntil(ctx context.Context, until time.Time) error {
	v := int64(0)
	if !until.IsZero() {
		v = until.Unix()
	}
	_, err := r.db.ExecContext(ctx, `UPDATE settings SET cooldown_until=? WHERE id=1`, v)
	return err
}

// CachePut stores a durable resolution. Fallback-origin resolutions never
// reach this table; the resolver keeps those in memory only.
func (r *Repo) CachePut(ctx context.Context, e media.CacheEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO resolution_cache(identity, playable_id, resolved_at) VALUES (?,?,?)`,
		e.Identity, e.PlayableID, e.ResolvedAt.Unix(),
	)
	return err
}

func (r *Repo) CacheGet(ctx context.Context, identity string) (*media.CacheEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT identity, playable_id, resolved_at FROM resolution_cache WHERE identity=?`, identity)
	var e media.CacheEntry
	var at int64
	if err := row.Scan(&e.Identity, &e.PlayableID, &at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	e.ResolvedAt = time.Unix(at, 0)
	return &e, nil
}

func (r *Repo) CacheRemove(ctx context.Context, identity string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM resolution_cache WHERE identity=?`, identity)
	return err
}

// CachePrune drops entries resolved before the cutoff.
func (r *Repo) CachePrune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM resolution_cache WHERE resolved_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CacheAll loads every durable entry; the resolver warms its in-memory map
// from this at startup.
func (r *Repo) CacheAll(ctx context.Context) ([]media.CacheEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT identity, playable_id, resolved_at FROM resolution_cache`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []media.CacheEntry
	for rows.Next() {
		var e media.CacheEntry
		var at int64
		if err := rows.Scan(&e.Identity, &e.PlayableID, &at); err != nil {
			return nil, err
		}
		e.ResolvedAt = time.Unix(at, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
