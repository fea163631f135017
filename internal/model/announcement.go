package model

import "time"

// Announcement is a public notice posted by an administrator.
type Announcement struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
