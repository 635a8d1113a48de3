package models

import "time"

// * Event is a public GitHub event, only used to discover repositories a user pushed to
type Event struct {
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	RepoName  string    `json:"repo_name"`
}

const (
	EventPush   = "PushEvent"
	EventCreate = "CreateEvent"
)

// IsRepositoryActivity reports whether the event signals commits landing in its repository.
func (e Event) IsRepositoryActivity() bool {
	return e.Type == EventPush || e.Type == EventCreate
}
