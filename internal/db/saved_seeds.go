package db

import "time"

// SavedSeed is a bookmarked socket/seed/faction combination.
type SavedSeed struct {
	ID       int64  `json:"id"`
	SocketID int    `json:"socket_id"`
	Seed     uint32 `json:"seed"`
	Faction  string `json:"faction"`
	Note     string `json:"note"`
	AddedAt  string `json:"added_at"`
}

// ListSavedSeeds returns all saved seeds, newest first.
func (d *DB) ListSavedSeeds() []SavedSeed {
	rows, err := d.sql.Query(`
		SELECT id, socket_id, seed, faction, note, added_at
		  FROM saved_seeds
		 ORDER BY id DESC
	`)
	if err != nil {
		return []SavedSeed{}
	}
	defer rows.Close()

	var items []SavedSeed
	for rows.Next() {
		var s SavedSeed
		var seed int64
		if err := rows.Scan(&s.ID, &s.SocketID, &seed, &s.Faction, &s.Note, &s.AddedAt); err != nil {
			continue
		}
		s.Seed = uint32(seed)
		items = append(items, s)
	}
	if items == nil {
		return []SavedSeed{}
	}
	return items
}

// AddSavedSeed inserts a saved seed. Returns the new ID and true, or false if
// the same socket/seed/faction is already saved.
func (d *DB) AddSavedSeed(s SavedSeed) (int64, bool) {
	if s.AddedAt == "" {
		s.AddedAt = time.Now().Format(time.RFC3339)
	}
	res, err := d.sql.Exec(
		`INSERT OR IGNORE INTO saved_seeds (socket_id, seed, faction, note, added_at)
		 VALUES (?, ?, ?, ?, ?)`,
		s.SocketID, int64(s.Seed), s.Faction, s.Note, s.AddedAt,
	)
	if err != nil {
		return 0, false
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, false
	}
	id, _ := res.LastInsertId()
	return id, true
}

// DeleteSavedSeed removes a saved seed by ID.
func (d *DB) DeleteSavedSeed(id int64) {
	d.sql.Exec("DELETE FROM saved_seeds WHERE id = ?", id)
}

// UpdateSavedSeedNote replaces the note of a saved seed. Returns false if no
// such seed exists.
func (d *DB) UpdateSavedSeedNote(id int64, note string) bool {
	res, err := d.sql.Exec("UPDATE saved_seeds SET note = ? WHERE id = ?", note, id)
	if err != nil {
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}
