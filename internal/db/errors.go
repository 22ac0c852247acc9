package db

import "errors"

// Sentinel errors returned by the repository. Handlers map them to HTTP
// statuses and user-facing messages; nothing below ever reaches a client
// verbatim.
var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a unique key (username, email, slug) is taken.
	ErrConflict = errors.New("duplicate key")
	// ErrLocked means the thread is closed for replies.
	ErrLocked = errors.New("thread locked")
	// ErrBanned means the acting user is currently banned.
	ErrBanned = errors.New("user banned")
	// ErrAlreadyGranted means the actor already gave +REP to this post.
	ErrAlreadyGranted = errors.New("rep already granted")
	// ErrSelfGrant means the actor tried to +REP their own post.
	ErrSelfGrant = errors.New("self rep forbidden")
)
