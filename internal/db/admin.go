package db

// TogglePinned flips a thread's pinned flag.
func (r *Repository) TogglePinned(threadID int64) error {
	return r.toggleThreadFlag(threadID, "pinned")
}

// ToggleLocked flips a thread's locked flag.
func (r *Repository) ToggleLocked(threadID int64) error {
	return r.toggleThreadFlag(threadID, "locked")
}

// ToggleHidden flips a thread's hidden flag.
func (r *Repository) ToggleHidden(threadID int64) error {
	return r.toggleThreadFlag(threadID, "hidden")
}

func (r *Repository) toggleThreadFlag(threadID int64, column string) error {
	// column is always one of the fixed flag names above.
	res, err := r.db.Exec(`UPDATE threads SET `+column+` = 1 - `+column+` WHERE id = ?`, threadID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateThread sets a thread's title and, when tags is non-nil, replaces
// its tag links.
func (r *Repository) UpdateThread(threadID int64, title string, tags []string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE threads SET title = ? WHERE id = ?`, title, threadID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	if tags != nil {
		if _, err := tx.Exec(`DELETE FROM thread_tags WHERE thread_id = ?`, threadID); err != nil {
			return err
		}
		if err := linkTags(tx, threadID, tags); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteThread removes a thread with its posts and every dependent
// interaction record, in one transaction.
func (r *Repository) DeleteThread(threadID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Order is important due to foreign keys
	deletes := []string{
		`DELETE FROM post_reactions WHERE post_id IN (SELECT id FROM posts WHERE thread_id = ?)`,
		`DELETE FROM post_likes WHERE post_id IN (SELECT id FROM posts WHERE thread_id = ?)`,
		`DELETE FROM post_rep WHERE post_id IN (SELECT id FROM posts WHERE thread_id = ?)`,
		`DELETE FROM thread_tags WHERE thread_id = ?`,
		`DELETE FROM thread_views WHERE thread_id = ?`,
		`DELETE FROM posts WHERE thread_id = ?`,
		`DELETE FROM threads WHERE id = ?`,
	}
	for _, q := range deletes {
		if _, err := tx.Exec(q, threadID); err != nil {
			return err
		}
	}
	return tx.Commit()
}
