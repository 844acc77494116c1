package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/perspectr/perspectr/internal/network"
)

// Snapshot is one stored refresh result.
type Snapshot struct {
	ID        int64          `json:"id"`
	ViewerID  string         `json:"viewer_id"`
	Epoch     int            `json:"epoch"`
	CreatedAt time.Time      `json:"created_at"`
	NodeCount int            `json:"node_count"`
	Nodes     []network.Node `json:"nodes,omitempty"`
}

// SaveSnapshot stores nodes in order and returns the new snapshot ID.
func (d *DB) SaveSnapshot(viewerID string, epoch int, nodes []network.Node) (int64, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO snapshots (viewer_id, epoch, created_at, node_count) VALUES (?, ?, ?, ?)`,
		viewerID, epoch, time.Now().UnixMilli(), len(nodes),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading snapshot id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO snapshot_nodes (
			snapshot_id, idx, node_id, x, y, name, email, instagram, discord, degraded
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing node insert: %w", err)
	}
	defer stmt.Close()

	for i, n := range nodes {
		if _, err := stmt.Exec(id, i, n.ID, n.X, n.Y, n.Name, n.Email, n.Instagram, n.Discord, n.Degraded); err != nil {
			return 0, fmt.Errorf("inserting node %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing snapshot: %w", err)
	}
	return id, nil
}

// LatestSnapshot returns the newest snapshot for viewerID with its nodes,
// or nil if there is none.
func (d *DB) LatestSnapshot(viewerID string) (*Snapshot, error) {
	row := d.db.QueryRow(`
		SELECT id, viewer_id, epoch, created_at, node_count
		FROM snapshots WHERE viewer_id = ?
		ORDER BY id DESC LIMIT 1
	`, viewerID)
	return d.loadSnapshot(row)
}

// GetSnapshot returns the snapshot with the given ID and its nodes, or nil
// if it does not exist.
func (d *DB) GetSnapshot(id int64) (*Snapshot, error) {
	row := d.db.QueryRow(`
		SELECT id, viewer_id, epoch, created_at, node_count
		FROM snapshots WHERE id = ?
	`, id)
	return d.loadSnapshot(row)
}

func (d *DB) loadSnapshot(row scanner) (*Snapshot, error) {
	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}

	s.Nodes, err = d.snapshotNodes(s.ID)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListSnapshots returns up to limit snapshot headers for viewerID, newest
// first. A non-positive limit returns all of them.
func (d *DB) ListSnapshots(viewerID string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := d.db.Query(`
		SELECT id, viewer_id, epoch, created_at, node_count
		FROM snapshots WHERE viewer_id = ?
		ORDER BY id DESC LIMIT ?
	`, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (d *DB) snapshotNodes(snapshotID int64) ([]network.Node, error) {
	rows, err := d.db.Query(`
		SELECT node_id, x, y, name, email, instagram, discord, degraded
		FROM snapshot_nodes WHERE snapshot_id = ?
		ORDER BY idx
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot nodes: %w", err)
	}
	defer rows.Close()

	nodes := []network.Node{}
	for rows.Next() {
		var n network.Node
		var email, instagram, discord sql.NullString
		if err := rows.Scan(&n.ID, &n.X, &n.Y, &n.Name, &email, &instagram, &discord, &n.Degraded); err != nil {
			return nil, fmt.Errorf("scanning snapshot node: %w", err)
		}
		n.Email, n.Instagram, n.Discord = email.String, instagram.String, discord.String
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*Snapshot, error) {
	var s Snapshot
	var created int64
	if err := row.Scan(&s.ID, &s.ViewerID, &s.Epoch, &created, &s.NodeCount); err != nil {
		return nil, err
	}
	s.CreatedAt = time.UnixMilli(created)
	return &s, nil
}
