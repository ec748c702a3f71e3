package repository

import "database/sql"

type Repo struct {
	db *sql.DB
}

type Settings struct {
	DefaultVolume int
	RadioEnabled  bool
	// CooldownUntil is the unix second the resolution-quota cooldown ends;
	// zero when no cooldown is active. Persisted so a restart inside the
	// window does not re-burn quota.
	CooldownUntil int64
}
