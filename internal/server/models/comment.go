package models

import "time"

type Comment struct {
	ID        string
	Text      string
	CreatedAt time.Time
	AuthorID  string
	EventID   string
}
