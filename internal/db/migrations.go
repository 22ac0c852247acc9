package db

import "golang.org/x/crypto/bcrypt"

// RunMigrations creates the schema and seeds the default data.
func (r *Repository) RunMigrations() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT UNIQUE NOT NULL COLLATE NOCASE,
            email TEXT UNIQUE NOT NULL COLLATE NOCASE,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'user',
            reputation INTEGER NOT NULL DEFAULT 0,
            badges TEXT NOT NULL DEFAULT '[]',
            avatar TEXT,
            signature TEXT NOT NULL DEFAULT '',
            banned INTEGER NOT NULL DEFAULT 0,
            username_shimmer INTEGER NOT NULL DEFAULT 0,
            username_shimmer_color1 TEXT NOT NULL DEFAULT '#4a9eff',
            username_shimmer_color2 TEXT NOT NULL DEFAULT '#f97316',
            username_verified INTEGER NOT NULL DEFAULT 0,
            bio TEXT,
            location TEXT,
            website TEXT,
            banner_url TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            last_seen DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS categories (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            slug TEXT UNIQUE NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            icon TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS threads (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            category_id INTEGER NOT NULL,
            author_id INTEGER NOT NULL,
            views INTEGER NOT NULL DEFAULT 0,
            pinned INTEGER NOT NULL DEFAULT 0,
            locked INTEGER NOT NULL DEFAULT 0,
            hidden INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY (category_id) REFERENCES categories(id),
            FOREIGN KEY (author_id) REFERENCES users(id)
        )`,
		`CREATE TABLE IF NOT EXISTS posts (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            thread_id INTEGER NOT NULL,
            author_id INTEGER NOT NULL,
            content TEXT NOT NULL,
            likes INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY (thread_id) REFERENCES threads(id),
            FOREIGN KEY (author_id) REFERENCES users(id)
        )`,
		`CREATE TABLE IF NOT EXISTS tags (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT UNIQUE NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS thread_tags (
            thread_id INTEGER NOT NULL,
            tag_id INTEGER NOT NULL,
            UNIQUE (thread_id, tag_id),
            FOREIGN KEY (thread_id) REFERENCES threads(id),
            FOREIGN KEY (tag_id) REFERENCES tags(id)
        )`,
		`CREATE TABLE IF NOT EXISTS thread_views (
            thread_id INTEGER NOT NULL,
            viewer_key TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            UNIQUE (thread_id, viewer_key),
            FOREIGN KEY (thread_id) REFERENCES threads(id)
        )`,
		`CREATE TABLE IF NOT EXISTS post_likes (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            post_id INTEGER NOT NULL,
            user_id INTEGER NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            UNIQUE (post_id, user_id),
            FOREIGN KEY (post_id) REFERENCES posts(id),
            FOREIGN KEY (user_id) REFERENCES users(id)
        )`,
		`CREATE TABLE IF NOT EXISTS post_reactions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            post_id INTEGER NOT NULL,
            user_id INTEGER NOT NULL,
            reaction TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            UNIQUE (post_id, user_id, reaction),
            FOREIGN KEY (post_id) REFERENCES posts(id),
            FOREIGN KEY (user_id) REFERENCES users(id)
        )`,
		`CREATE TABLE IF NOT EXISTS post_rep (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            post_id INTEGER NOT NULL,
            user_id INTEGER NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            UNIQUE (post_id, user_id),
            FOREIGN KEY (post_id) REFERENCES posts(id),
            FOREIGN KEY (user_id) REFERENCES users(id)
        )`,
		`CREATE TABLE IF NOT EXISTS bans (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER NOT NULL,
            reason TEXT NOT NULL DEFAULT '',
            banned_by INTEGER NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY (user_id) REFERENCES users(id)
        )`,
		`CREATE TABLE IF NOT EXISTS plugins (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            slug TEXT UNIQUE NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            full_description TEXT NOT NULL DEFAULT '',
            author_id INTEGER NOT NULL,
            version TEXT NOT NULL DEFAULT '1.0',
            price REAL NOT NULL DEFAULT 0,
            file_url TEXT NOT NULL DEFAULT '',
            image_url TEXT NOT NULL DEFAULT '',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY (author_id) REFERENCES users(id)
        )`,
		`CREATE TABLE IF NOT EXISTS banners (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            image_url TEXT NOT NULL,
            url TEXT NOT NULL DEFAULT '',
            position TEXT NOT NULL DEFAULT 'top',
            active INTEGER NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS notices (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            message TEXT NOT NULL,
            type TEXT NOT NULL DEFAULT 'info',
            position TEXT NOT NULL DEFAULT 'top',
            dismissible INTEGER NOT NULL DEFAULT 1,
            active INTEGER NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS reports (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            type TEXT NOT NULL DEFAULT 'post',
            content_id TEXT NOT NULL DEFAULT '',
            reporter_id INTEGER NOT NULL,
            reported_id INTEGER,
            content_summary TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'pending',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            resolved_at DATETIME,
            FOREIGN KEY (reporter_id) REFERENCES users(id)
        )`,
		`CREATE TABLE IF NOT EXISTS site_settings (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS profile_settings (
            user_id INTEGER PRIMARY KEY,
            show_stats INTEGER NOT NULL DEFAULT 1,
            show_activity INTEGER NOT NULL DEFAULT 1,
            show_online INTEGER NOT NULL DEFAULT 1,
            FOREIGN KEY (user_id) REFERENCES users(id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_threads_category ON threads(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_threads_author ON threads(author_id)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_thread ON posts(thread_id)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return r.seed()
}

// seed creates the default users, category and site settings when absent.
func (r *Repository) seed() error {
	var admins int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users WHERE role = 'admin'`).Scan(&admins); err != nil {
		return err
	}
	if admins == 0 {
		defaults := []struct {
			username, email, password, role string
			reputation                      int
		}{
			{"admin", "admin@example.com", "admin", "admin", 0},
			{"kanekiq", "kanekiq@example.com", "kanekiq", "user", 100},
		}
		for _, d := range defaults {
			hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			_, err = r.db.Exec(`INSERT OR IGNORE INTO users (username, email, password_hash, role, reputation) VALUES (?, ?, ?, ?, ?)`,
				d.username, d.email, string(hash), d.role, d.reputation)
			if err != nil {
				return err
			}
		}
	}

	var categories int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&categories); err != nil {
		return err
	}
	if categories == 0 {
		_, err := r.db.Exec(`INSERT INTO categories (name, slug, description, icon) VALUES (?, ?, ?, ?)`,
			"Общее обсуждение", "general", "Общие темы и обсуждения", "💬")
		if err != nil {
			return err
		}
	}

	settings := [][2]string{
		{"enableCaptcha", "1"},
		{"registrationEnabled", "1"},
	}
	for _, s := range settings {
		if _, err := r.db.Exec(`INSERT OR IGNORE INTO site_settings (key, value) VALUES (?, ?)`, s[0], s[1]); err != nil {
			return err
		}
	}
	return nil
}
