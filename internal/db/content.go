package db

import (
	"database/sql"
	"strings"
	"time"

	"github.com/Kenkanekiqwe/yotaapp/internal/models"
)

// maxThreadTags caps how many tags a single thread can carry.
const maxThreadTags = 6

// ListCategories returns all categories with their thread/post totals.
func (r *Repository) ListCategories() ([]*models.CategorySummary, error) {
	rows, err := r.db.Query(`SELECT c.id, c.name, c.slug, c.description, c.icon, c.created_at,
		(SELECT COUNT(*) FROM threads t WHERE t.category_id = c.id),
		(SELECT COUNT(*) FROM posts p JOIN threads t ON t.id = p.thread_id WHERE t.category_id = c.id)
		FROM categories c`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*models.CategorySummary{}
	for rows.Next() {
		c := &models.CategorySummary{}
		var icon sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &icon, &c.CreatedAt, &c.ThreadCount, &c.PostCount); err != nil {
			return nil, err
		}
		c.Icon = nullableString(icon)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategoryBySlug retrieves a category by its slug.
func (r *Repository) GetCategoryBySlug(slug string) (*models.Category, error) {
	c := &models.Category{}
	var icon sql.NullString
	err := r.db.QueryRow(`SELECT id, name, slug, description, icon, created_at FROM categories WHERE slug = ?`, slug).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &icon, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Icon = nullableString(icon)
	return c, nil
}

// CreateCategory creates a new category.
func (r *Repository) CreateCategory(name, slug, description string, icon *string) error {
	_, err := r.db.Exec(`INSERT INTO categories (name, slug, description, icon, created_at) VALUES (?, ?, ?, ?, ?)`,
		name, slug, description, icon, time.Now())
	if err != nil && isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// UpdateCategory updates a category.
func (r *Repository) UpdateCategory(id int64, name, slug, description string, icon *string) error {
	_, err := r.db.Exec(`UPDATE categories SET name = ?, slug = ?, description = ?, icon = ? WHERE id = ?`,
		name, slug, description, icon, id)
	if err != nil && isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// DeleteCategory deletes a category by ID.
func (r *Repository) DeleteCategory(id int64) error {
	_, err := r.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	return err
}

// GetThreadByID retrieves a thread by ID.
func (r *Repository) GetThreadByID(threadID int64) (*models.Thread, error) {
	t := &models.Thread{}
	err := r.db.QueryRow(`SELECT id, title, category_id, author_id, views, pinned, locked, hidden, created_at, updated_at FROM threads WHERE id = ?`, threadID).
		Scan(&t.ID, &t.Title, &t.CategoryID, &t.AuthorID, &t.Views, &t.Pinned, &t.Locked, &t.Hidden, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateThread creates a thread together with its first post and tag links.
// The whole sequence commits as one transaction: a thread is never visible
// without its first post.
func (r *Repository) CreateThread(title string, categoryID, authorID int64, content string, tags []string) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM categories WHERE id = ?)`, categoryID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrNotFound
	}
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, authorID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrNotFound
	}

	now := time.Now()
	res, err := tx.Exec(`INSERT INTO threads (title, category_id, author_id, views, pinned, locked, hidden, created_at, updated_at) VALUES (?, ?, ?, 0, 0, 0, 0, ?, ?)`,
		title, categoryID, authorID, now, now)
	if err != nil {
		return 0, err
	}
	threadID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	_, err = tx.Exec(`INSERT INTO posts (thread_id, author_id, content, likes, created_at, updated_at) VALUES (?, ?, ?, 0, ?, ?)`,
		threadID, authorID, content, now, now)
	if err != nil {
		return 0, err
	}

	if err := linkTags(tx, threadID, tags); err != nil {
		return 0, err
	}
	return threadID, tx.Commit()
}

// linkTags attaches up to maxThreadTags tag names to a thread, creating
// unknown tags lazily.
func linkTags(tx *sql.Tx, threadID int64, tags []string) error {
	n := 0
	for _, raw := range tags {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if n++; n > maxThreadTags {
			break
		}
		if _, err := tx.Exec(`INSERT OR IGNORE INTO tags (name) VALUES (?)`, name); err != nil {
			return err
		}
		var tagID int64
		if err := tx.QueryRow(`SELECT id FROM tags WHERE name = ?`, name).Scan(&tagID); err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT OR IGNORE INTO thread_tags (thread_id, tag_id) VALUES (?, ?)`, threadID, tagID); err != nil {
			return err
		}
	}
	return nil
}

// AddReply appends a post to a thread and bumps the thread's updated_at.
func (r *Repository) AddReply(threadID, authorID int64, content string) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var locked int
	err = tx.QueryRow(`SELECT locked FROM threads WHERE id = ?`, threadID).Scan(&locked)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if locked == 1 {
		return 0, ErrLocked
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, authorID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrNotFound
	}

	now := time.Now()
	res, err := tx.Exec(`INSERT INTO posts (thread_id, author_id, content, likes, created_at, updated_at) VALUES (?, ?, ?, 0, ?, ?)`,
		threadID, authorID, content, now, now)
	if err != nil {
		return 0, err
	}
	postID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`UPDATE threads SET updated_at = ? WHERE id = ?`, now, threadID); err != nil {
		return 0, err
	}
	return postID, tx.Commit()
}

// GetPostByID retrieves a post by ID.
func (r *Repository) GetPostByID(postID int64) (*models.Post, error) {
	p := &models.Post{}
	err := r.db.QueryRow(`SELECT id, thread_id, author_id, content, likes, created_at, updated_at FROM posts WHERE id = ?`, postID).
		Scan(&p.ID, &p.ThreadID, &p.AuthorID, &p.Content, &p.Likes, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPlugins returns all plugins with author names, optionally filtered by
// a search term over name and description.
func (r *Repository) ListPlugins(search string) ([]*models.PluginView, error) {
	query := `SELECT p.id, p.name, p.slug, p.description, p.full_description, p.author_id, p.version, p.price, p.file_url, p.image_url, p.created_at,
		IFNULL(u.username, 'Unknown')
		FROM plugins p LEFT JOIN users u ON u.id = p.author_id`
	var args []any
	if search != "" {
		query += ` WHERE p.name LIKE ? OR p.description LIKE ?`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plugins := []*models.PluginView{}
	for rows.Next() {
		p := &models.PluginView{}
		err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.FullDescription, &p.AuthorID,
			&p.Version, &p.Price, &p.FileURL, &p.ImageURL, &p.CreatedAt, &p.AuthorName)
		if err != nil {
			return nil, err
		}
		plugins = append(plugins, p)
	}
	return plugins, rows.Err()
}

// GetPluginBySlug retrieves a plugin by slug with its author name.
func (r *Repository) GetPluginBySlug(slug string) (*models.PluginView, error) {
	p := &models.PluginView{}
	err := r.db.QueryRow(`SELECT p.id, p.name, p.slug, p.description, p.full_description, p.author_id, p.version, p.price, p.file_url, p.image_url, p.created_at,
		IFNULL(u.username, 'Unknown')
		FROM plugins p LEFT JOIN users u ON u.id = p.author_id WHERE p.slug = ?`, slug).
		Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.FullDescription, &p.AuthorID,
			&p.Version, &p.Price, &p.FileURL, &p.ImageURL, &p.CreatedAt, &p.AuthorName)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreatePlugin inserts a new plugin. The slug must be unique.
func (r *Repository) CreatePlugin(p *models.Plugin) error {
	res, err := r.db.Exec(`INSERT INTO plugins (name, slug, description, full_description, author_id, version, price, file_url, image_url, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Slug, p.Description, p.FullDescription, p.AuthorID, p.Version, p.Price, p.FileURL, p.ImageURL, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

// UpdatePlugin updates the editable plugin fields.
func (r *Repository) UpdatePlugin(id int64, name, slug, description, fullDescription, version string, price float64, fileURL, imageURL string) error {
	_, err := r.db.Exec(`UPDATE plugins SET name = ?, slug = ?, description = ?, full_description = ?, version = ?, price = ?, file_url = ?, image_url = ? WHERE id = ?`,
		name, slug, description, fullDescription, version, price, fileURL, imageURL, id)
	if err != nil && isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// DeletePlugin deletes a plugin by ID.
func (r *Repository) DeletePlugin(id int64) error {
	_, err := r.db.Exec(`DELETE FROM plugins WHERE id = ?`, id)
	return err
}
