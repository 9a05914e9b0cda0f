package db

import (
	"fmt"
)

// SchemaVersion is the number of migrations this build knows about
func SchemaVersion() int {
	return len(migrations)
}

// RunMigrations applies pending migrations and returns how many ran
func (db *DB) RunMigrations() (int, error) {
	var version int
	if err := db.conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}

	applied := 0
	for i := version; i < len(migrations); i++ {
		if _, err := db.conn.Exec(migrations[i]); err != nil {
			return applied, fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := db.conn.Exec(fmt.Sprintf("PRAGMA user_version=%d", i+1)); err != nil {
			return applied, fmt.Errorf("record schema version: %w", err)
		}
		applied++
	}
	return applied, nil
}
