package models

import "time"

// Badge is a decoration shown next to a username.
type Badge struct {
	Text     string `json:"text"`
	Color    string `json:"color"`
	Gradient string `json:"gradient,omitempty"`
}

// User represents a forum user. PasswordHash never leaves the server.
type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Role          string    `json:"role"`
	Reputation    int64     `json:"reputation"`
	Badges        []Badge   `json:"badges"`
	Avatar        *string   `json:"avatar"`
	Signature     string    `json:"signature"`
	Banned        int       `json:"banned"`
	Shimmer       int       `json:"username_shimmer"`
	ShimmerColor1 string    `json:"username_shimmer_color1"`
	ShimmerColor2 string    `json:"username_shimmer_color2"`
	Verified      int       `json:"username_verified"`
	Bio           *string   `json:"bio"`
	Location      *string   `json:"location"`
	Website       *string   `json:"website"`
	BannerURL     *string   `json:"banner_url"`
	CreatedAt     time.Time `json:"created_at"`
	LastSeen      time.Time `json:"last_seen"`
}

// Category represents a forum category.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Icon        *string   `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategorySummary is a category with its thread/post totals.
type CategorySummary struct {
	Category
	ThreadCount int64 `json:"thread_count"`
	PostCount   int64 `json:"post_count"`
}

// Thread represents a forum thread. Pinned/Locked/Hidden are 0/1 flags,
// matching the wire format the clients expect.
type Thread struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	CategoryID int64     `json:"category_id"`
	AuthorID   int64     `json:"author_id"`
	Views      int64     `json:"views"`
	Pinned     int       `json:"pinned"`
	Locked     int       `json:"locked"`
	Hidden     int       `json:"hidden"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Post represents a single post inside a thread.
type Post struct {
	ID        int64     `json:"id"`
	ThreadID  int64     `json:"thread_id"`
	AuthorID  int64     `json:"author_id"`
	Content   string    `json:"content"`
	Likes     int64     `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tag is a deduplicated tag name; thread_tags links tags to threads.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Plugin represents a marketplace plugin.
type Plugin struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description"`
	FullDescription string    `json:"full_description"`
	AuthorID        int64     `json:"author_id"`
	Version         string    `json:"version"`
	Price           float64   `json:"price"`
	FileURL         string    `json:"file_url"`
	ImageURL        string    `json:"image_url"`
	CreatedAt       time.Time `json:"created_at"`
}

// PluginView is a plugin joined with its author's name.
type PluginView struct {
	Plugin
	AuthorName string `json:"author_name"`
}

// Ban is one record of the append-only ban history.
type Ban struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Reason    string    `json:"reason"`
	BannedBy  int64     `json:"banned_by"`
	CreatedAt time.Time `json:"created_at"`
}

// BanInfo is the ban block returned to a banned user on login/verify.
type BanInfo struct {
	Reason    string     `json:"reason"`
	BannedBy  string     `json:"bannedBy"`
	CreatedAt *time.Time `json:"createdAt"`
}

// Banner is a site-wide promotional banner.
type Banner struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	URL       string    `json:"url"`
	Position  string    `json:"position"`
	Active    int       `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Notice is a site-wide notice message.
type Notice struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	Position    string    `json:"position"`
	Dismissible int       `json:"dismissible"`
	Active      int       `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Report is a user-submitted complaint about a post or user.
type Report struct {
	ID             int64      `json:"id"`
	Type           string     `json:"type"`
	ContentID      string     `json:"content_id"`
	ReporterID     int64      `json:"reporter_id"`
	ReportedID     *int64     `json:"reported_id"`
	ContentSummary string     `json:"content_summary"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// ReportView is a report joined with reporter/reported usernames.
type ReportView struct {
	Report
	ReporterName *string `json:"reporter_name"`
	ReportedName *string `json:"reported_name"`
}

// ProfileSettings controls profile page visibility toggles.
type ProfileSettings struct {
	ShowStats    int `json:"show_stats"`
	ShowActivity int `json:"show_activity"`
	ShowOnline   int `json:"show_online"`
}

// ThreadSummary is one row of the thread-list projection.
type ThreadSummary struct {
	Thread
	AuthorName    string     `json:"author_name"`
	AuthorAvatar  *string    `json:"author_avatar"`
	Shimmer       int        `json:"author_name_shimmer"`
	ShimmerColor1 string     `json:"author_name_shimmer_color1"`
	ShimmerColor2 string     `json:"author_name_shimmer_color2"`
	Verified      int        `json:"author_name_verified"`
	ReplyCount    int64      `json:"reply_count"`
	LastPostTime  *time.Time `json:"last_post_time"`
	Tags          string     `json:"tags"`
}

// PostView is one post of the thread-detail projection, joined with its
// author's decorations and the viewer's prior +REP state.
type PostView struct {
	Post
	Username      string     `json:"username"`
	Avatar        *string    `json:"avatar"`
	Reputation    int64      `json:"reputation"`
	Badges        []Badge    `json:"badges"`
	Signature     *string    `json:"signature"`
	Shimmer       int        `json:"username_shimmer"`
	ShimmerColor1 string     `json:"username_shimmer_color1"`
	ShimmerColor2 string     `json:"username_shimmer_color2"`
	Verified      int        `json:"username_verified"`
	UserJoined    *time.Time `json:"user_joined"`
	UserPostCount int64      `json:"user_post_count"`
	RepGiven      bool       `json:"rep_given"`
}

// ThreadDetail is the full thread-detail projection.
type ThreadDetail struct {
	Thread
	AuthorName    string     `json:"author_name"`
	AuthorAvatar  *string    `json:"author_avatar"`
	Badges        []Badge    `json:"badges"`
	Shimmer       int        `json:"author_name_shimmer"`
	ShimmerColor1 string     `json:"author_name_shimmer_color1"`
	ShimmerColor2 string     `json:"author_name_shimmer_color2"`
	Verified      int        `json:"author_name_verified"`
	CategoryName  string     `json:"category_name"`
	CategorySlug  string     `json:"category_slug"`
	Tags          []string   `json:"tags"`
	Posts         []PostView `json:"posts"`
}

// ThreadAdminView is a thread row for the admin screens.
type ThreadAdminView struct {
	Thread
	AuthorName string `json:"author_name"`
}

// ActivityItem is one entry of a profile's recent activity feed.
type ActivityItem struct {
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"created_at"`
	ThreadTitle string    `json:"thread_title"`
}

// ProfileView is the user-profile projection.
type ProfileView struct {
	User
	PostCount      int64          `json:"post_count"`
	ThreadCount    int64          `json:"thread_count"`
	PluginCount    int64          `json:"plugin_count"`
	RecentActivity []ActivityItem `json:"recentActivity"`
}

// UserSummary is one row of the user directory.
type UserSummary struct {
	User
	PostCount int64 `json:"post_count"`
	IsOnline  int   `json:"is_online"`
}

// Stats is the site-wide counters block.
type Stats struct {
	Threads int64 `json:"threads"`
	Posts   int64 `json:"posts"`
	Users   int64 `json:"users"`
	Plugins int64 `json:"plugins"`
	Online  int64 `json:"online"`
}
