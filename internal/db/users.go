package db

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/Kenkanekiqwe/yotaapp/internal/models"

	"golang.org/x/crypto/bcrypt"
)

const userColumns = `id, username, email, password_hash, role, reputation, badges, avatar, signature,
	banned, username_shimmer, username_shimmer_color1, username_shimmer_color2, username_verified,
	bio, location, website, banner_url, created_at, last_seen`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var badges string
	var avatar, bio, location, website, bannerURL sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Reputation, &badges,
		&avatar, &u.Signature, &u.Banned, &u.Shimmer, &u.ShimmerColor1, &u.ShimmerColor2, &u.Verified,
		&bio, &location, &website, &bannerURL, &u.CreatedAt, &u.LastSeen)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Badges = unmarshalBadges(badges)
	u.Avatar = nullableString(avatar)
	u.Bio = nullableString(bio)
	u.Location = nullableString(location)
	u.Website = nullableString(website)
	u.BannerURL = nullableString(bannerURL)
	return u, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func unmarshalBadges(raw string) []models.Badge {
	badges := []models.Badge{}
	if raw == "" {
		return badges
	}
	// Кривые данные не должны ронять проекцию
	_ = json.Unmarshal([]byte(raw), &badges)
	return badges
}

func marshalBadges(badges []models.Badge) string {
	if badges == nil {
		badges = []models.Badge{}
	}
	b, err := json.Marshal(badges)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// CreateUser creates a new user with password hashing.
func (r *Repository) CreateUser(user *models.User, plainPassword string) error {
	// Convert email and username to lowercase for consistency
	user.Email = strings.ToLower(user.Email)
	user.Username = strings.ToLower(user.Username)
	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	now := time.Now()
	res, err := r.db.Exec(`INSERT INTO users (username, email, password_hash, role, created_at, last_seen) VALUES (?, ?, ?, 'user', ?, ?)`,
		user.Username, user.Email, user.PasswordHash, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	user.ID, err = res.LastInsertId()
	return err
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(userID int64) (*models.User, error) {
	return scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, userID))
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(username string) (*models.User, error) {
	return scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

// CheckPassword compares a plain password against the stored hash.
func (r *Repository) CheckPassword(user *models.User, plainPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(plainPassword)) == nil
}

// TouchLastSeen updates the user's last-seen timestamp.
func (r *Repository) TouchLastSeen(userID int64) error {
	_, err := r.db.Exec(`UPDATE users SET last_seen = ? WHERE id = ?`, time.Now(), userID)
	return err
}

// UpdateProfile updates the editable profile fields of a user.
func (r *Repository) UpdateProfile(userID int64, bio, location, website, avatar, signature, bannerURL *string) error {
	sig := ""
	if signature != nil {
		sig = *signature
	}
	_, err := r.db.Exec(`UPDATE users SET bio = ?, location = ?, website = ?, avatar = ?, signature = ?, banner_url = ? WHERE id = ?`,
		bio, location, website, avatar, sig, bannerURL, userID)
	return err
}

// UpdateUserDecorations applies the admin-editable user fields.
func (r *Repository) UpdateUserDecorations(userID int64, badges []models.Badge, role string, shimmer int, color1, color2 string, verified int) error {
	if color1 == "" {
		color1 = "#4a9eff"
	}
	if color2 == "" {
		color2 = "#f97316"
	}
	_, err := r.db.Exec(`UPDATE users SET badges = ?, role = ?, username_shimmer = ?, username_shimmer_color1 = ?, username_shimmer_color2 = ?, username_verified = ? WHERE id = ?`,
		marshalBadges(badges), role, shimmer, color1, color2, verified, userID)
	return err
}

// ToggleBan flips the user's ban flag. Banning appends a record to the ban
// history; unbanning keeps the history intact.
func (r *Repository) ToggleBan(userID int64, reason string, bannedBy int64) error {
	var banned int
	err := r.db.QueryRow(`SELECT banned FROM users WHERE id = ?`, userID).Scan(&banned)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if banned == 0 {
		if _, err := r.db.Exec(`UPDATE users SET banned = 1 WHERE id = ?`, userID); err != nil {
			return err
		}
		_, err = r.db.Exec(`INSERT INTO bans (user_id, reason, banned_by, created_at) VALUES (?, ?, ?, ?)`,
			userID, reason, bannedBy, time.Now())
		return err
	}
	_, err = r.db.Exec(`UPDATE users SET banned = 0 WHERE id = ?`, userID)
	return err
}

// LatestBan returns the ban block for a banned user, with documented
// defaults when the history or the banning moderator is missing.
func (r *Repository) LatestBan(userID int64) models.BanInfo {
	info := models.BanInfo{Reason: "Не указана", BannedBy: "Администрация"}

	var reason string
	var bannedBy int64
	var createdAt time.Time
	err := r.db.QueryRow(`SELECT reason, banned_by, created_at FROM bans WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID).Scan(&reason, &bannedBy, &createdAt)
	if err != nil {
		return info
	}
	if reason != "" {
		info.Reason = reason
	}
	info.CreatedAt = &createdAt

	var banner string
	if err := r.db.QueryRow(`SELECT username FROM users WHERE id = ?`, bannedBy).Scan(&banner); err == nil {
		info.BannedBy = banner
	}
	return info
}
