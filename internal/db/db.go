package db

import (
	"database/sql"

	"github.com/Kenkanekiqwe/yotaapp/internal/config"

	"github.com/mattn/go-sqlite3"
)

// Repository provides methods for working with the database.
type Repository struct {
	db *sql.DB
}

// NewRepository opens the database and creates a new repository.
func NewRepository(cfg *config.Config) (*Repository, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, err
	}

	// Лайки, просмотры и ответы пишутся конкурентно: WAL и busy_timeout
	// снижают вероятность "database is locked".
	_, _ = db.Exec(`PRAGMA journal_mode=WAL;`)
	_, _ = db.Exec(`PRAGMA busy_timeout=3000;`)
	_, _ = db.Exec(`PRAGMA foreign_keys=ON;`)

	// У :memory: каждая связь пула получила бы свою пустую базу.
	if cfg.DBPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	return &Repository{db: db}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	if e, ok := err.(sqlite3.Error); ok {
		return e.Code == sqlite3.ErrConstraint
	}
	return false
}
