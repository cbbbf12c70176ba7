package db

import (
	"context"
	"time"

	"timeless-mapper/internal/graph"
	"timeless-mapper/internal/jewel"
)

// AnalysisRecord is a stored seed analysis summary.
type AnalysisRecord struct {
	ID               int64   `json:"id"`
	Timestamp        string  `json:"timestamp"`
	RequestID        string  `json:"request_id"`
	SocketID         int     `json:"socket_id"`
	Seed             uint32  `json:"seed"`
	Faction          string  `json:"faction"`
	Keystone         string  `json:"keystone"`
	Radius           float64 `json:"radius"`
	RadiusName       string  `json:"radius_name"`
	TotalTribute     int     `json:"total_tribute"`
	NotableCount     int     `json:"notable_count"`
	SmallCount       int     `json:"small_count"`
	KeystoneReplaced bool    `json:"keystone_replaced"`
	DurationMs       int64   `json:"duration_ms"`
}

const historyColumns = `id, timestamp, request_id, socket_id, seed, faction, keystone, radius, radius_name,
	 total_tribute, notable_count, small_count, keystone_replaced, duration_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (AnalysisRecord, error) {
	var r AnalysisRecord
	var seed int64
	err := row.Scan(&r.ID, &r.Timestamp, &r.RequestID, &r.SocketID, &seed, &r.Faction, &r.Keystone,
		&r.Radius, &r.RadiusName, &r.TotalTribute, &r.NotableCount, &r.SmallCount, &r.KeystoneReplaced, &r.DurationMs)
	r.Seed = uint32(seed)
	return r, err
}

// InsertAnalysis stores an analysis and its transformed nodes, returning the
// new record ID.
func (d *DB) InsertAnalysis(requestID string, a *jewel.SeedAnalysis, durationMs int64) (int64, error) {
	ctx := context.Background()
	conn, err := d.sql.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	socketID := 0
	if a.Socket != nil {
		socketID = a.Socket.ID
	}
	res, err := tx.Exec(
		`INSERT INTO analysis_history
		   (timestamp, request_id, socket_id, seed, faction, keystone, radius, radius_name,
		    total_tribute, notable_count, small_count, keystone_replaced, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Format(time.RFC3339), requestID, socketID, int64(a.Seed), a.Faction, a.Keystone,
		a.Radius, a.RadiusName, a.TotalTribute, a.NotableCount, a.SmallCount, a.KeystoneReplaced, durationMs,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO analysis_nodes
		   (analysis_id, position, original_node_id, original_name, original_type, new_name, new_id,
		    distance, x, y, hops, tribute_value)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for i, n := range a.TransformedNodes {
		if _, err := stmt.Exec(id, i, n.OriginalNodeID, n.OriginalName, string(n.OriginalKind), n.NewName, n.NewID,
			n.Distance, n.X, n.Y, n.Hops, n.TributeValue); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		// SQLite leaves the transaction open when COMMIT is rejected.
		conn.ExecContext(ctx, "ROLLBACK")
		return 0, err
	}
	return id, nil
}

// GetHistory returns the last N analysis records (newest first).
func (d *DB) GetHistory(limit int) []AnalysisRecord {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.Query(
		`SELECT `+historyColumns+` FROM analysis_history ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return []AnalysisRecord{}
	}
	defer rows.Close()

	var records []AnalysisRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			continue
		}
		records = append(records, r)
	}
	if records == nil {
		return []AnalysisRecord{}
	}
	return records
}

// GetHistoryByID returns a single analysis record, or nil.
func (d *DB) GetHistoryByID(id int64) *AnalysisRecord {
	row := d.sql.QueryRow(`SELECT `+historyColumns+` FROM analysis_history WHERE id = ?`, id)
	r, err := scanRecord(row)
	if err != nil {
		return nil
	}
	return &r
}

// GetAnalysisNodes returns the stored transformed nodes of an analysis in
// their original order.
func (d *DB) GetAnalysisNodes(id int64) []jewel.TransformedNode {
	rows, err := d.sql.Query(
		`SELECT original_node_id, original_name, original_type, new_name, new_id, distance, x, y, hops, tribute_value
		   FROM analysis_nodes WHERE analysis_id = ? ORDER BY position`,
		id,
	)
	if err != nil {
		return []jewel.TransformedNode{}
	}
	defer rows.Close()

	nodes := []jewel.TransformedNode{}
	for rows.Next() {
		var n jewel.TransformedNode
		var kind string
		if err := rows.Scan(&n.OriginalNodeID, &n.OriginalName, &kind, &n.NewName, &n.NewID,
			&n.Distance, &n.X, &n.Y, &n.Hops, &n.TributeValue); err != nil {
			continue
		}
		n.OriginalKind = graph.Kind(kind)
		nodes = append(nodes, n)
	}
	return nodes
}

// DeleteHistory deletes an analysis record and its nodes.
func (d *DB) DeleteHistory(id int64) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec("DELETE FROM analysis_nodes WHERE analysis_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM analysis_history WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// ClearHistory deletes all analysis records older than given days and
// returns how many were removed.
func (d *DB) ClearHistory(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays).Format(time.RFC3339)

	tx, err := d.sql.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(
		`DELETE FROM analysis_nodes
		  WHERE analysis_id IN (SELECT id FROM analysis_history WHERE timestamp < ?)`, cutoff); err != nil {
		return 0, err
	}
	result, err := tx.Exec("DELETE FROM analysis_history WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	count, _ := result.RowsAffected()
	return count, nil
}
