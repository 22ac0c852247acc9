package db

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/Kenkanekiqwe/yotaapp/internal/models"
)

// onlineWindow is how recent last_seen must be for a user to count as online.
const onlineWindow = 5 * time.Minute

// userDefaults are the SQL fallbacks for a missing author record: the
// projection degrades to documented defaults instead of failing.
const threadAuthorDefaults = `IFNULL(u.username, 'Unknown'), u.avatar,
	IFNULL(u.username_shimmer, 0),
	IFNULL(u.username_shimmer_color1, '#4a9eff'),
	IFNULL(u.username_shimmer_color2, '#f97316'),
	IFNULL(u.username_verified, 0)`

// ThreadList builds the thread-list projection, optionally filtered by
// category slug. Pinned threads sort first, then most recently updated.
func (r *Repository) ThreadList(categorySlug string) ([]*models.ThreadSummary, error) {
	query := `SELECT t.id, t.title, t.category_id, t.author_id, t.views, t.pinned, t.locked, t.hidden, t.created_at, t.updated_at,
		` + threadAuthorDefaults + `,
		(SELECT COUNT(*) FROM posts p WHERE p.thread_id = t.id),
		(SELECT MAX(p.created_at) FROM posts p WHERE p.thread_id = t.id),
		IFNULL((SELECT GROUP_CONCAT(tg.name) FROM thread_tags tt JOIN tags tg ON tg.id = tt.tag_id WHERE tt.thread_id = t.id), '')
		FROM threads t LEFT JOIN users u ON u.id = t.author_id`
	var args []any

	// Неизвестный slug не фильтрует список, как и раньше.
	if categorySlug != "" {
		if cat, err := r.GetCategoryBySlug(categorySlug); err == nil {
			query += ` WHERE t.category_id = ?`
			args = append(args, cat.ID)
		}
	}
	query += ` ORDER BY t.pinned DESC, t.updated_at DESC, t.id ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	threads := []*models.ThreadSummary{}
	for rows.Next() {
		t := &models.ThreadSummary{}
		var avatar sql.NullString
		var lastPost sql.NullTime
		err := rows.Scan(&t.ID, &t.Title, &t.CategoryID, &t.AuthorID, &t.Views, &t.Pinned, &t.Locked, &t.Hidden,
			&t.CreatedAt, &t.UpdatedAt,
			&t.AuthorName, &avatar, &t.Shimmer, &t.ShimmerColor1, &t.ShimmerColor2, &t.Verified,
			&t.ReplyCount, &lastPost, &t.Tags)
		if err != nil {
			return nil, err
		}
		t.AuthorAvatar = nullableString(avatar)
		if lastPost.Valid {
			v := lastPost.Time
			t.LastPostTime = &v
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

// ThreadDetail builds the full thread-detail projection: thread, category,
// author decorations, posts with their authors, tags and the viewer's prior
// +REP grants. Missing join targets degrade to defaults, never to an error.
func (r *Repository) ThreadDetail(threadID int64, viewerKey string) (*models.ThreadDetail, error) {
	d := &models.ThreadDetail{}
	var avatar sql.NullString
	var badges string
	err := r.db.QueryRow(`SELECT t.id, t.title, t.category_id, t.author_id, t.views, t.pinned, t.locked, t.hidden, t.created_at, t.updated_at,
		`+threadAuthorDefaults+`, IFNULL(u.badges, '[]'),
		IFNULL(c.name, 'Unknown'), IFNULL(c.slug, 'general')
		FROM threads t
		LEFT JOIN users u ON u.id = t.author_id
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.id = ?`, threadID).
		Scan(&d.ID, &d.Title, &d.CategoryID, &d.AuthorID, &d.Views, &d.Pinned, &d.Locked, &d.Hidden,
			&d.CreatedAt, &d.UpdatedAt,
			&d.AuthorName, &avatar, &d.Shimmer, &d.ShimmerColor1, &d.ShimmerColor2, &d.Verified,
			&badges, &d.CategoryName, &d.CategorySlug)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	d.AuthorAvatar = nullableString(avatar)
	d.Badges = unmarshalBadges(badges)

	posts, err := r.threadPosts(threadID)
	if err != nil {
		return nil, err
	}
	if err := r.markRepGiven(posts, viewerKey); err != nil {
		return nil, err
	}
	d.Posts = posts

	tags, err := r.threadTags(threadID)
	if err != nil {
		return nil, err
	}
	d.Tags = tags
	return d, nil
}

func (r *Repository) threadPosts(threadID int64) ([]models.PostView, error) {
	rows, err := r.db.Query(`SELECT p.id, p.thread_id, p.author_id, p.content, p.likes, p.created_at, p.updated_at,
		IFNULL(u.username, 'Unknown'), u.avatar, IFNULL(u.reputation, 0), IFNULL(u.badges, '[]'), u.signature,
		IFNULL(u.username_shimmer, 0),
		IFNULL(u.username_shimmer_color1, '#4a9eff'),
		IFNULL(u.username_shimmer_color2, '#f97316'),
		IFNULL(u.username_verified, 0),
		u.created_at,
		(SELECT COUNT(*) FROM posts p2 WHERE p2.author_id = p.author_id)
		FROM posts p LEFT JOIN users u ON u.id = p.author_id
		WHERE p.thread_id = ?
		ORDER BY p.created_at ASC, p.id ASC`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.PostView{}
	for rows.Next() {
		p := models.PostView{}
		var avatar, signature sql.NullString
		var badges string
		var joined sql.NullTime
		err := rows.Scan(&p.ID, &p.ThreadID, &p.AuthorID, &p.Content, &p.Likes, &p.CreatedAt, &p.UpdatedAt,
			&p.Username, &avatar, &p.Reputation, &badges, &signature,
			&p.Shimmer, &p.ShimmerColor1, &p.ShimmerColor2, &p.Verified,
			&joined, &p.UserPostCount)
		if err != nil {
			return nil, err
		}
		p.Avatar = nullableString(avatar)
		p.Signature = nullableString(signature)
		p.Badges = unmarshalBadges(badges)
		if joined.Valid {
			v := joined.Time
			p.UserJoined = &v
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// markRepGiven sets rep_given on each post for an authenticated viewer.
// Anonymous viewer keys leave every post at rep_given=false.
func (r *Repository) markRepGiven(posts []models.PostView, viewerKey string) error {
	if len(posts) == 0 || !strings.HasPrefix(viewerKey, "user:") {
		return nil
	}
	viewerID, err := strconv.ParseInt(strings.TrimPrefix(viewerKey, "user:"), 10, 64)
	if err != nil {
		return nil
	}

	args := []any{viewerID}
	for _, p := range posts {
		args = append(args, p.ID)
	}
	rows, err := r.db.Query(`SELECT post_id FROM post_rep WHERE user_id = ? AND post_id IN (?`+
		strings.Repeat(",?", len(posts)-1)+`)`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	given := map[int64]bool{}
	for rows.Next() {
		var postID int64
		if err := rows.Scan(&postID); err != nil {
			return err
		}
		given[postID] = true
	}
	for i := range posts {
		posts[i].RepGiven = given[posts[i].ID]
	}
	return rows.Err()
}

func (r *Repository) threadTags(threadID int64) ([]string, error) {
	rows, err := r.db.Query(`SELECT tg.name FROM thread_tags tt JOIN tags tg ON tg.id = tt.tag_id
		WHERE tt.thread_id = ? ORDER BY tg.name ASC`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// Profile builds the user-profile projection: counts plus the ten most
// recent posts annotated with their thread titles.
func (r *Repository) Profile(username string) (*models.ProfileView, error) {
	user, err := r.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}

	p := &models.ProfileView{User: *user}
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE author_id = ?`, user.ID).Scan(&p.PostCount); err != nil {
		return nil, err
	}
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM threads WHERE author_id = ?`, user.ID).Scan(&p.ThreadCount); err != nil {
		return nil, err
	}
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM plugins WHERE author_id = ?`, user.ID).Scan(&p.PluginCount); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(`SELECT p.content, p.created_at, IFNULL(t.title, 'Unknown')
		FROM posts p LEFT JOIN threads t ON t.id = p.thread_id
		WHERE p.author_id = ?
		ORDER BY p.created_at DESC, p.id DESC LIMIT 10`, user.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	p.RecentActivity = []models.ActivityItem{}
	for rows.Next() {
		item := models.ActivityItem{Type: "post"}
		var content string
		if err := rows.Scan(&content, &item.CreatedAt, &item.ThreadTitle); err != nil {
			return nil, err
		}
		item.Title = truncateRunes(content, 100)
		p.RecentActivity = append(p.RecentActivity, item)
	}
	return p, rows.Err()
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// ListUsers returns the user directory sorted by reputation, with live post
// counts and online flags. Password hashes never serialize.
func (r *Repository) ListUsers(search string) ([]*models.UserSummary, error) {
	query := `SELECT ` + userColumns + `,
		(SELECT COUNT(*) FROM posts p WHERE p.author_id = users.id)
		FROM users`
	var args []any
	if search != "" {
		query += ` WHERE username LIKE ?`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY reputation DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cutoff := time.Now().Add(-onlineWindow)
	users := []*models.UserSummary{}
	for rows.Next() {
		s := &models.UserSummary{}
		u := &s.User
		var badges string
		var avatar, bio, location, website, bannerURL sql.NullString
		err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Reputation, &badges,
			&avatar, &u.Signature, &u.Banned, &u.Shimmer, &u.ShimmerColor1, &u.ShimmerColor2, &u.Verified,
			&bio, &location, &website, &bannerURL, &u.CreatedAt, &u.LastSeen, &s.PostCount)
		if err != nil {
			return nil, err
		}
		u.Badges = unmarshalBadges(badges)
		u.Avatar = nullableString(avatar)
		u.Bio = nullableString(bio)
		u.Location = nullableString(location)
		u.Website = nullableString(website)
		u.BannerURL = nullableString(bannerURL)
		if u.LastSeen.After(cutoff) {
			s.IsOnline = 1
		}
		users = append(users, s)
	}
	return users, rows.Err()
}

// SiteStats returns the site-wide totals.
func (r *Repository) SiteStats() (*models.Stats, error) {
	s := &models.Stats{}
	counts := []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM threads`, &s.Threads},
		{`SELECT COUNT(*) FROM posts`, &s.Posts},
		{`SELECT COUNT(*) FROM users`, &s.Users},
		{`SELECT COUNT(*) FROM plugins`, &s.Plugins},
	}
	for _, c := range counts {
		if err := r.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}
	err := r.db.QueryRow(`SELECT COUNT(*) FROM users WHERE last_seen > ?`, time.Now().Add(-onlineWindow)).Scan(&s.Online)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// AdminThreads returns all threads with author names, newest first.
func (r *Repository) AdminThreads() ([]*models.ThreadAdminView, error) {
	rows, err := r.db.Query(`SELECT t.id, t.title, t.category_id, t.author_id, t.views, t.pinned, t.locked, t.hidden, t.created_at, t.updated_at,
		IFNULL(u.username, 'Unknown')
		FROM threads t LEFT JOIN users u ON u.id = t.author_id
		ORDER BY t.created_at DESC, t.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	threads := []*models.ThreadAdminView{}
	for rows.Next() {
		t := &models.ThreadAdminView{}
		err := rows.Scan(&t.ID, &t.Title, &t.CategoryID, &t.AuthorID, &t.Views, &t.Pinned, &t.Locked, &t.Hidden,
			&t.CreatedAt, &t.UpdatedAt, &t.AuthorName)
		if err != nil {
			return nil, err
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

// AdminUsers returns every user record for the admin screens.
func (r *Repository) AdminUsers() ([]*models.User, error) {
	rows, err := r.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
