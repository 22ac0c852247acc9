package db

import (
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// RecordView counts a thread view at most once per viewer key. The ledger
// insert and the counter increment commit together, so the counter can
// never run ahead of the ledger.
func (r *Repository) RecordView(threadID int64, viewerKey string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM threads WHERE id = ?)`, threadID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	res, err := tx.Exec(`INSERT OR IGNORE INTO thread_views (thread_id, viewer_key, created_at) VALUES (?, ?, ?)`,
		threadID, viewerKey, time.Now())
	if err != nil {
		return err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if inserted == 1 {
		if _, err := tx.Exec(`UPDATE threads SET views = views + 1 WHERE id = ?`, threadID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ToggleLike flips the (post, user) like record and adjusts the post's like
// counter in the same transaction. Returns the resulting counter and
// whether the post is now liked by the user.
func (r *Repository) ToggleLike(postID, userID int64) (int64, bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM posts WHERE id = ?)`, postID).Scan(&exists); err != nil {
		return 0, false, err
	}
	if !exists {
		return 0, false, ErrNotFound
	}

	res, err := tx.Exec(`INSERT OR IGNORE INTO post_likes (post_id, user_id, created_at) VALUES (?, ?, ?)`,
		postID, userID, time.Now())
	if err != nil {
		return 0, false, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}

	liked := inserted == 1
	if liked {
		_, err = tx.Exec(`UPDATE posts SET likes = likes + 1 WHERE id = ?`, postID)
	} else {
		if _, err = tx.Exec(`DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`, postID, userID); err == nil {
			_, err = tx.Exec(`UPDATE posts SET likes = likes - 1 WHERE id = ?`, postID)
		}
	}
	if err != nil {
		return 0, false, err
	}

	var likes int64
	if err := tx.QueryRow(`SELECT likes FROM posts WHERE id = ?`, postID).Scan(&likes); err != nil {
		return 0, false, err
	}
	return likes, liked, tx.Commit()
}

// ToggleReaction flips the (post, user, reaction) record and returns the
// post's live reaction tally. Tallies are always derived from the ledger,
// there is no stored reaction counter.
func (r *Repository) ToggleReaction(postID, userID int64, reaction string) (map[string]int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM posts WHERE id = ?)`, postID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	res, err := tx.Exec(`INSERT OR IGNORE INTO post_reactions (post_id, user_id, reaction, created_at) VALUES (?, ?, ?, ?)`,
		postID, userID, reaction, time.Now())
	if err != nil {
		return nil, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if inserted == 0 {
		if _, err := tx.Exec(`DELETE FROM post_reactions WHERE post_id = ? AND user_id = ? AND reaction = ?`,
			postID, userID, reaction); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.reactionSummary(postID)
}

func (r *Repository) reactionSummary(postID int64) (map[string]int64, error) {
	rows, err := r.db.Query(`SELECT reaction, COUNT(*) FROM post_reactions WHERE post_id = ? GROUP BY reaction`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := map[string]int64{}
	for rows.Next() {
		var reaction string
		var count int64
		if err := rows.Scan(&reaction, &count); err != nil {
			return nil, err
		}
		summary[reaction] = count
	}
	return summary, rows.Err()
}

// ReactionsForPosts returns reaction tallies grouped per post, keyed by the
// post id in decimal form.
func (r *Repository) ReactionsForPosts(postIDs []int64) (map[string]map[string]int64, error) {
	result := map[string]map[string]int64{}
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `SELECT post_id, reaction, COUNT(*) FROM post_reactions WHERE post_id IN (?` +
		strings.Repeat(",?", len(postIDs)-1) + `) GROUP BY post_id, reaction`
	args := make([]any, len(postIDs))
	for i, id := range postIDs {
		args[i] = id
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var postID int64
		var reaction string
		var count int64
		if err := rows.Scan(&postID, &reaction, &count); err != nil {
			return nil, err
		}
		key := strconv.FormatInt(postID, 10)
		if result[key] == nil {
			result[key] = map[string]int64{}
		}
		result[key][reaction] = count
	}
	return result, rows.Err()
}

// GrantRep grants one reputation point to the post's author, at most once
// per (post, actor) pair. Self-grants are forbidden and there is no
// un-grant. Returns the author's resulting reputation.
func (r *Repository) GrantRep(postID, actorID int64) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var authorID int64
	err = tx.QueryRow(`SELECT author_id FROM posts WHERE id = ?`, postID).Scan(&authorID)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if authorID == actorID {
		return 0, ErrSelfGrant
	}

	res, err := tx.Exec(`INSERT OR IGNORE INTO post_rep (post_id, user_id, created_at) VALUES (?, ?, ?)`,
		postID, actorID, time.Now())
	if err != nil {
		return 0, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if inserted == 0 {
		return 0, ErrAlreadyGranted
	}

	if _, err := tx.Exec(`UPDATE users SET reputation = reputation + 1 WHERE id = ?`, authorID); err != nil {
		return 0, err
	}
	var reputation int64
	if err := tx.QueryRow(`SELECT reputation FROM users WHERE id = ?`, authorID).Scan(&reputation); err != nil {
		return 0, err
	}
	return reputation, tx.Commit()
}
