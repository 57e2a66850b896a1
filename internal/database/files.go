package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"video-tagger/internal/logging"
)

// GetFile retrieves a single file by id, tag set included.
// Returns ErrNotFound when no row exists.
func (d *Database) GetFile(ctx context.Context, id int64) (*VideoFile, error) {
	done := observeQuery("get_file")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	file, err := d.getFileUnlocked(ctx, id)
	done(err)
	return file, err
}

// getFileUnlocked materializes one file row plus its tags.
// Caller must hold at least a read lock.
func (d *Database) getFileUnlocked(ctx context.Context, id int64) (*VideoFile, error) {
	var (
		file     VideoFile
		modTime  int64
		duration sql.NullFloat64
		rating   sql.NullInt64
	)

	err := d.db.QueryRowContext(ctx,
		"SELECT id, path, size, date_modified, duration, rating FROM files WHERE id = ?",
		id,
	).Scan(&file.ID, &file.Path, &file.Size, &modTime, &duration, &rating)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	file.DateModified = time.Unix(modTime, 0)
	if duration.Valid {
		v := duration.Float64
		file.Duration = &v
	}
	if rating.Valid {
		v := int(rating.Int64)
		file.Rating = &v
	}

	file.Tags, err = d.fileTagsUnlocked(ctx, id)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// fileTagsUnlocked returns the tag set attached to a file.
// Caller must hold at least a read lock.
func (d *Database) fileTagsUnlocked(ctx context.Context, fileID int64) (map[string]struct{}, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT t.name
		FROM tags t
		INNER JOIN file_has_tag ft ON t.id = ft.tag_id
		WHERE ft.file_id = ?
	`, fileID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	tags := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tags[name] = struct{}{}
	}
	return tags, rows.Err()
}

// FindFile looks a file up by path. An untracked path is not an error:
// the result is (nil, nil).
func (d *Database) FindFile(ctx context.Context, path string) (*VideoFile, error) {
	done := observeQuery("find_file")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id int64
	err := d.db.QueryRowContext(ctx, "SELECT id FROM files WHERE path = ?", path).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		done(nil)
		return nil, nil
	}
	if err != nil {
		done(err)
		return nil, err
	}

	file, err := d.getFileUnlocked(ctx, id)
	done(err)
	return file, err
}

// ListFiles returns every tracked file ordered by path ascending.
func (d *Database) ListFiles(ctx context.Context) ([]*VideoFile, error) {
	done := observeQuery("list_files")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		"SELECT id, path, size, date_modified, duration, rating FROM files ORDER BY path")
	if err != nil {
		done(err)
		return nil, err
	}
	defer closeRows(rows)

	var files []*VideoFile
	byID := make(map[int64]*VideoFile)
	for rows.Next() {
		var (
			file     VideoFile
			modTime  int64
			duration sql.NullFloat64
			rating   sql.NullInt64
		)
		if err := rows.Scan(&file.ID, &file.Path, &file.Size, &modTime, &duration, &rating); err != nil {
			done(err)
			return nil, err
		}
		file.DateModified = time.Unix(modTime, 0)
		if duration.Valid {
			v := duration.Float64
			file.Duration = &v
		}
		if rating.Valid {
			v := int(rating.Int64)
			file.Rating = &v
		}
		file.Tags = make(map[string]struct{})
		files = append(files, &file)
		byID[file.ID] = &file
	}
	if err := rows.Err(); err != nil {
		done(err)
		return nil, err
	}

	// One pass over the association table instead of a query per file.
	tagRows, err := d.db.QueryContext(ctx, `
		SELECT ft.file_id, t.name
		FROM file_has_tag ft
		INNER JOIN tags t ON t.id = ft.tag_id
	`)
	if err != nil {
		done(err)
		return nil, err
	}
	defer closeRows(tagRows)

	for tagRows.Next() {
		var (
			fileID int64
			name   string
		)
		if err := tagRows.Scan(&fileID, &name); err != nil {
			done(err)
			return nil, err
		}
		if file, ok := byID[fileID]; ok {
			file.Tags[name] = struct{}{}
		}
	}
	if err := tagRows.Err(); err != nil {
		done(err)
		return nil, err
	}

	done(nil)
	return files, nil
}

// ListFilesMatching returns files holding all whitelist tags and none of
// the blacklist tags, ordered by path. An empty whitelist or blacklist is
// no constraint; the semantics match filter.Filter exactly.
func (d *Database) ListFilesMatching(ctx context.Context, whitelist, blacklist []string) ([]*VideoFile, error) {
	done := observeQuery("list_files_matching")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// User input can repeat a tag; the subset count below must reflect
	// the distinct set, matching the in-memory predicate.
	whitelist = dedupe(whitelist)
	blacklist = dedupe(blacklist)

	query := "SELECT id FROM files"
	var conds []string
	var args []interface{}

	if len(whitelist) > 0 {
		// Subset test: the file must carry every whitelist tag, hence the
		// DISTINCT count must equal the whitelist size.
		conds = append(conds, fmt.Sprintf(`id IN (
			SELECT ft.file_id
			FROM file_has_tag ft
			INNER JOIN tags t ON t.id = ft.tag_id
			WHERE t.name IN (%s)
			GROUP BY ft.file_id
			HAVING COUNT(DISTINCT t.id) = ?)`, placeholders(len(whitelist))))
		for _, name := range whitelist {
			args = append(args, name)
		}
		args = append(args, len(whitelist))
	}

	if len(blacklist) > 0 {
		conds = append(conds, fmt.Sprintf(`id NOT IN (
			SELECT ft.file_id
			FROM file_has_tag ft
			INNER JOIN tags t ON t.id = ft.tag_id
			WHERE t.name IN (%s))`, placeholders(len(blacklist))))
		for _, name := range blacklist {
			args = append(args, name)
		}
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY path"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		done(err)
		return nil, err
	}
	defer closeRows(rows)

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			done(err)
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		done(err)
		return nil, err
	}

	files := make([]*VideoFile, 0, len(ids))
	for _, id := range ids {
		file, err := d.getFileUnlocked(ctx, id)
		if err != nil {
			done(err)
			return nil, err
		}
		files = append(files, file)
	}

	done(nil)
	return files, nil
}

// AddFile inserts a new file and attaches every tag in its tag set,
// auto-creating unknown tags, all in one transaction. On success the
// store-assigned id replaces the file's sentinel id. If the path is
// already tracked, the existing row is left untouched and ErrPathExists
// is returned.
func (d *Database) AddFile(ctx context.Context, file *VideoFile) (int64, error) {
	done := observeQuery("add_file")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// The check-then-insert pair must not race with another writer; the
	// transaction plus the store mutex makes it atomic here.
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		done(err)
		return 0, err
	}
	defer rollback(tx)

	var existing int64
	err = tx.QueryRowContext(ctx, "SELECT id FROM files WHERE path = ?", file.Path).Scan(&existing)
	if err == nil {
		done(nil)
		return 0, ErrPathExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		done(err)
		return 0, err
	}

	var duration interface{}
	if file.Duration != nil {
		duration = *file.Duration
	}
	var rating interface{}
	if file.Rating != nil {
		rating = *file.Rating
	}

	result, err := tx.ExecContext(ctx,
		"INSERT INTO files (path, size, date_modified, duration, rating) VALUES (?, ?, ?, ?, ?)",
		file.Path, file.Size, file.DateModified.Unix(), duration, rating,
	)
	if err != nil {
		done(err)
		return 0, fmt.Errorf("failed to insert file: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		done(err)
		return 0, err
	}

	for name := range file.Tags {
		if err := setTagTx(ctx, tx, id, name); err != nil {
			done(err)
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		done(err)
		return 0, err
	}

	file.ID = id
	done(nil)
	return id, nil
}

// SetRating overwrites a file's rating unconditionally. nil clears it.
func (d *Database) SetRating(ctx context.Context, fileID int64, rating *int) error {
	done := observeQuery("set_rating")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value interface{}
	if rating != nil {
		value = *rating
	}

	_, err := d.db.ExecContext(ctx, "UPDATE files SET rating = ? WHERE id = ?", value, fileID)
	done(err)
	return err
}

// SetDuration overwrites a file's probed duration. nil clears it.
func (d *Database) SetDuration(ctx context.Context, fileID int64, seconds *float64) error {
	done := observeQuery("set_duration")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value interface{}
	if seconds != nil {
		value = *seconds
	}

	_, err := d.db.ExecContext(ctx, "UPDATE files SET duration = ? WHERE id = ?", value, fileID)
	done(err)
	return err
}

// RemoveFile deletes a file and all of its tag associations.
func (d *Database) RemoveFile(ctx context.Context, fileID int64) error {
	done := observeQuery("remove_file")

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

	if _, err := tx.ExecContext(ctx, "DELETE FROM file_has_tag WHERE file_id = ?", fileID); err != nil {
		done(err)
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM files WHERE id = ?", fileID); err != nil {
		done(err)
		return err
	}

	err = tx.Commit()
	done(err)
	return err
}

// placeholders returns "?, ?, ..." with n placeholders for an IN list.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// dedupe drops repeated names, keeping first-seen order.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var out []string
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logging.Error("error closing rows: %v", err)
	}
}
