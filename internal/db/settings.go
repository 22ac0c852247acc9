package db

import (
	"database/sql"
	"time"

	"github.com/Kenkanekiqwe/yotaapp/internal/models"
)

// GetSetting returns a site setting value, or def when the key is absent
// or the store is unavailable. Settings reads never fail a request.
func (r *Repository) GetSetting(key, def string) string {
	var value string
	if err := r.db.QueryRow(`SELECT value FROM site_settings WHERE key = ?`, key).Scan(&value); err != nil {
		return def
	}
	return value
}

// AllSettings returns every site setting as a key/value map.
func (r *Repository) AllSettings() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT key, value FROM site_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		settings[k] = v
	}
	return settings, rows.Err()
}

// SaveSettings upserts the given site settings.
func (r *Repository) SaveSettings(settings map[string]string) error {
	for k, v := range settings {
		_, err := r.db.Exec(`INSERT INTO site_settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListBanners returns banners, optionally only active ones at a position.
func (r *Repository) ListBanners(position string, activeOnly bool) ([]*models.Banner, error) {
	query := `SELECT id, title, image_url, url, position, active, created_at FROM banners`
	var where []string
	var args []any
	if activeOnly {
		where = append(where, `active = 1`)
	}
	if position != "" {
		where = append(where, `position = ?`)
		args = append(args, position)
	}
	for i, w := range where {
		if i == 0 {
			query += ` WHERE ` + w
		} else {
			query += ` AND ` + w
		}
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	banners := []*models.Banner{}
	for rows.Next() {
		b := &models.Banner{}
		if err := rows.Scan(&b.ID, &b.Title, &b.ImageURL, &b.URL, &b.Position, &b.Active, &b.CreatedAt); err != nil {
			return nil, err
		}
		banners = append(banners, b)
	}
	return banners, rows.Err()
}

// CreateBanner inserts a new banner.
func (r *Repository) CreateBanner(b *models.Banner) error {
	res, err := r.db.Exec(`INSERT INTO banners (title, image_url, url, position, active, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		b.Title, b.ImageURL, b.URL, b.Position, b.Active, time.Now())
	if err != nil {
		return err
	}
	b.ID, err = res.LastInsertId()
	return err
}

// UpdateBanner updates a banner.
func (r *Repository) UpdateBanner(b *models.Banner) error {
	_, err := r.db.Exec(`UPDATE banners SET title = ?, image_url = ?, url = ?, position = ?, active = ? WHERE id = ?`,
		b.Title, b.ImageURL, b.URL, b.Position, b.Active, b.ID)
	return err
}

// DeleteBanner deletes a banner by ID.
func (r *Repository) DeleteBanner(id int64) error {
	_, err := r.db.Exec(`DELETE FROM banners WHERE id = ?`, id)
	return err
}

// ListNotices returns notices, optionally only active ones.
func (r *Repository) ListNotices(activeOnly bool) ([]*models.Notice, error) {
	query := `SELECT id, title, message, type, position, dismissible, active, created_at FROM notices`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notices := []*models.Notice{}
	for rows.Next() {
		n := &models.Notice{}
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.Type, &n.Position, &n.Dismissible, &n.Active, &n.CreatedAt); err != nil {
			return nil, err
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}

// CreateNotice inserts a new notice.
func (r *Repository) CreateNotice(n *models.Notice) error {
	res, err := r.db.Exec(`INSERT INTO notices (title, message, type, position, dismissible, active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.Title, n.Message, n.Type, n.Position, n.Dismissible, n.Active, time.Now())
	if err != nil {
		return err
	}
	n.ID, err = res.LastInsertId()
	return err
}

// UpdateNotice updates a notice.
func (r *Repository) UpdateNotice(n *models.Notice) error {
	_, err := r.db.Exec(`UPDATE notices SET title = ?, message = ?, type = ?, position = ?, dismissible = ?, active = ? WHERE id = ?`,
		n.Title, n.Message, n.Type, n.Position, n.Dismissible, n.Active, n.ID)
	return err
}

// DeleteNotice deletes a notice by ID.
func (r *Repository) DeleteNotice(id int64) error {
	_, err := r.db.Exec(`DELETE FROM notices WHERE id = ?`, id)
	return err
}

// ToggleNotice flips a notice's active flag.
func (r *Repository) ToggleNotice(id int64) error {
	res, err := r.db.Exec(`UPDATE notices SET active = 1 - active WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateReport inserts a user-submitted report.
func (r *Repository) CreateReport(report *models.Report) error {
	res, err := r.db.Exec(`INSERT INTO reports (type, content_id, reporter_id, reported_id, content_summary, status, created_at) VALUES (?, ?, ?, ?, ?, 'pending', ?)`,
		report.Type, report.ContentID, report.ReporterID, report.ReportedID, report.ContentSummary, time.Now())
	if err != nil {
		return err
	}
	report.ID, err = res.LastInsertId()
	return err
}

// ListReports returns all reports joined with reporter/reported usernames,
// newest first.
func (r *Repository) ListReports() ([]*models.ReportView, error) {
	rows, err := r.db.Query(`SELECT rp.id, rp.type, rp.content_id, rp.reporter_id, rp.reported_id, rp.content_summary, rp.status, rp.created_at, rp.resolved_at,
		reporter.username, reported.username
		FROM reports rp
		LEFT JOIN users reporter ON reporter.id = rp.reporter_id
		LEFT JOIN users reported ON reported.id = rp.reported_id
		ORDER BY rp.created_at DESC, rp.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []*models.ReportView{}
	for rows.Next() {
		v := &models.ReportView{}
		var reportedID sql.NullInt64
		var resolvedAt sql.NullTime
		var reporterName, reportedName sql.NullString
		err := rows.Scan(&v.ID, &v.Type, &v.ContentID, &v.ReporterID, &reportedID, &v.ContentSummary,
			&v.Status, &v.CreatedAt, &resolvedAt, &reporterName, &reportedName)
		if err != nil {
			return nil, err
		}
		if reportedID.Valid {
			id := reportedID.Int64
			v.ReportedID = &id
		}
		if resolvedAt.Valid {
			t := resolvedAt.Time
			v.ResolvedAt = &t
		}
		v.ReporterName = nullableString(reporterName)
		v.ReportedName = nullableString(reportedName)
		reports = append(reports, v)
	}
	return reports, rows.Err()
}

// SetReportStatus updates a report's status; resolved reports also record
// the resolution time.
func (r *Repository) SetReportStatus(id int64, status string) error {
	if status == "resolved" {
		_, err := r.db.Exec(`UPDATE reports SET status = ?, resolved_at = ? WHERE id = ?`, status, time.Now(), id)
		return err
	}
	_, err := r.db.Exec(`UPDATE reports SET status = ? WHERE id = ?`, status, id)
	return err
}

// DeleteReport deletes a report by ID.
func (r *Repository) DeleteReport(id int64) error {
	_, err := r.db.Exec(`DELETE FROM reports WHERE id = ?`, id)
	return err
}

// GetProfileSettings returns a user's profile visibility toggles, with
// everything visible by default.
func (r *Repository) GetProfileSettings(userID int64) models.ProfileSettings {
	ps := models.ProfileSettings{ShowStats: 1, ShowActivity: 1, ShowOnline: 1}
	_ = r.db.QueryRow(`SELECT show_stats, show_activity, show_online FROM profile_settings WHERE user_id = ?`, userID).
		Scan(&ps.ShowStats, &ps.ShowActivity, &ps.ShowOnline)
	return ps
}

// SaveProfileSettings upserts a user's profile visibility toggles.
func (r *Repository) SaveProfileSettings(userID int64, ps models.ProfileSettings) error {
	_, err := r.db.Exec(`INSERT INTO profile_settings (user_id, show_stats, show_activity, show_online) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET show_stats = excluded.show_stats, show_activity = excluded.show_activity, show_online = excluded.show_online`,
		userID, ps.ShowStats, ps.ShowActivity, ps.ShowOnline)
	return err
}
