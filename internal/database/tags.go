package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// TagCounts returns every tag with its usage count. Tags with no current
// attachments appear with count 0.
func (d *Database) TagCounts(ctx context.Context) (map[string]int, error) {
	done := observeQuery("tag_counts")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT t.name, COUNT(ft.tag_id)
		FROM tags t
		LEFT JOIN file_has_tag ft ON t.id = ft.tag_id
		GROUP BY t.id
	`)
	if err != nil {
		done(err)
		return nil, err
	}
	defer closeRows(rows)

	counts := make(map[string]int)
	for rows.Next() {
		var (
			name  string
			count int
		)
		if err := rows.Scan(&name, &count); err != nil {
			done(err)
			return nil, err
		}
		counts[name] = count
	}

	err = rows.Err()
	done(err)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// AddTag creates a tag definition with no attachments. Creating a tag
// that already exists is a no-op; names are unique.
func (d *Database) AddTag(ctx context.Context, name string) error {
	done := observeQuery("add_tag")

	name = strings.TrimSpace(name)
	if name == "" {
		err := errors.New("tag name cannot be empty")
		done(err)
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, "INSERT OR IGNORE INTO tags (name) VALUES (?)", name)
	done(err)
	return err
}

// SetTag attaches a tag to a file, auto-creating the tag if unknown.
// Attaching an already-attached tag is a no-op.
func (d *Database) SetTag(ctx context.Context, fileID int64, name string) error {
	done := observeQuery("set_tag")

	name = strings.TrimSpace(name)
	if name == "" {
		err := errors.New("tag name cannot be empty")
		done(err)
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		done(err)
		return err
	}
	defer rollback(tx)

	if err := setTagTx(ctx, tx, fileID, name); err != nil {
		done(err)
		return err
	}

	err = tx.Commit()
	done(err)
	return err
}

// setTagTx performs the get-or-create-then-attach inside a transaction.
func setTagTx(ctx context.Context, tx *sql.Tx, fileID int64, name string) error {
	var tagID int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM tags WHERE name = ?", name).Scan(&tagID)
	if errors.Is(err, sql.ErrNoRows) {
		result, createErr := tx.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?)", name)
		if createErr != nil {
			return fmt.Errorf("failed to create tag: %w", createErr)
		}
		tagID, err = result.LastInsertId()
	}
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO file_has_tag (file_id, tag_id) VALUES (?, ?)",
		fileID, tagID,
	)
	return err
}

// RemoveTag detaches a tag from a file. An unknown tag or a missing
// association is a no-op.
func (d *Database) RemoveTag(ctx context.Context, fileID int64, name string) error {
	done := observeQuery("remove_tag")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, `
		DELETE FROM file_has_tag
		WHERE file_id = ? AND tag_id = (SELECT id FROM tags WHERE name = ?)
	`, fileID, name)
	done(err)
	return err
}

// DeleteTag removes a tag definition and cascades removal of all of its
// associations. Deleting an unknown tag is a no-op.
func (d *Database) DeleteTag(ctx context.Context, name string) error {
	done := observeQuery("delete_tag")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		done(err)
		return err
	}
	defer rollback(tx)

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM file_has_tag WHERE tag_id IN (SELECT id FROM tags WHERE name = ?)", name); err != nil {
		done(err)
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM tags WHERE name = ?", name); err != nil {
		done(err)
		return err
	}

	err = tx.Commit()
	done(err)
	return err
}
