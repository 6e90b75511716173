// Package archive keeps a local sqlite copy of normalized feed items so the
// history and status commands can show recent board activity without a
// server round trip.
package archive

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/boardpulse/boardpulse/internal/feed"
)

const schema = `
CREATE TABLE IF NOT EXISTS feed_items (
	id TEXT PRIMARY KEY,
	board TEXT NOT NULL,
	surface TEXT NOT NULL,
	kind TEXT NOT NULL,
	created_at TEXT NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	agent_id TEXT NOT NULL DEFAULT '',
	actor_name TEXT NOT NULL DEFAULT '',
	task_id TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_feed_items_board_surface ON feed_items(board, surface, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_feed_items_created ON feed_items(created_at DESC);
`

// Archive is a per-board local cache of feed items.
type Archive struct {
	db    *sql.DB
	board string
}

// Open opens or creates the archive database at dbPath.
func Open(dbPath, board string) (*Archive, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open archive db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init archive schema: %w", err)
	}
	return &Archive{db: db, board: board}, nil
}

// Close releases the database handle.
func (a *Archive) Close() error { return a.db.Close() }

// UpsertItems stores a batch of items for a surface. A stored row is only
// replaced when the incoming version carries a later created_at, so replayed
// or stale deliveries leave the archive untouched.
func (a *Archive) UpsertItems(surface feed.Surface, items []feed.Item) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("archive upsert: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO feed_items
		(id, board, surface, kind, created_at, message, agent_id, actor_name, task_id, title)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			created_at = excluded.created_at,
			message = excluded.message,
			agent_id = excluded.agent_id,
			actor_name = excluded.actor_name,
			task_id = excluded.task_id,
			title = excluded.title
		WHERE excluded.created_at > feed_items.created_at`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("archive upsert: %w", err)
	}
	defer stmt.Close()
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		if _, err := stmt.Exec(it.ID, a.board, string(surface), string(it.Kind), it.CreatedAt,
			it.Message, it.AgentID, it.ActorName, it.TaskID, it.Title); err != nil {
			tx.Rollback()
			return fmt.Errorf("archive upsert %s: %w", it.ID, err)
		}
	}
	return tx.Commit()
}

// RecentItems returns up to limit items for a surface, newest first.
func (a *Archive) RecentItems(surface feed.Surface, limit int) ([]feed.Item, error) {
	rows, err := a.db.Query(`SELECT id, kind, created_at, message, agent_id, actor_name, task_id, title
		FROM feed_items WHERE board = ? AND surface = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`, a.board, string(surface), limit)
	if err != nil {
		return nil, fmt.Errorf("archive query: %w", err)
	}
	defer rows.Close()

	var items []feed.Item
	for rows.Next() {
		var it feed.Item
		var kind string
		if err := rows.Scan(&it.ID, &kind, &it.CreatedAt, &it.Message,
			&it.AgentID, &it.ActorName, &it.TaskID, &it.Title); err != nil {
			return nil, fmt.Errorf("archive scan: %w", err)
		}
		it.Kind = feed.Kind(kind)
		items = append(items, it)
	}
	return items, rows.Err()
}

// Count reports how many items the archive holds for a surface.
func (a *Archive) Count(surface feed.Surface) (int, error) {
	var n int
	err := a.db.QueryRow(`SELECT COUNT(*) FROM feed_items WHERE board = ? AND surface = ?`,
		a.board, string(surface)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("archive count: %w", err)
	}
	return n, nil
}

// Prune deletes all but the newest keep items per surface.
func (a *Archive) Prune(surface feed.Surface, keep int) error {
	_, err := a.db.Exec(`DELETE FROM feed_items WHERE board = ? AND surface = ? AND id NOT IN (
		SELECT id FROM feed_items WHERE board = ? AND surface = ?
		ORDER BY created_at DESC, id DESC LIMIT ?)`,
		a.board, string(surface), a.board, string(surface), keep)
	if err != nil {
		return fmt.Errorf("archive prune: %w", err)
	}
	return nil
}
