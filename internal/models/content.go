package models

import "time"

// Author is the owner of a piece of content
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Announcement is a row of the announcements list
type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Audience  string    `json:"audience"`
	Author    *Author   `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// Resource is a row of the learning resources list
type Resource struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Subject   string    `json:"subject"`
	URL       string    `json:"url"`
	Author    *Author   `json:"uploadedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post is a row of the discussion posts list
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Author    *Author   `json:"author"`
	Comments  int       `json:"commentCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// OwnedBy reports whether p was written by the user with id userID
func (p Post) OwnedBy(userID string) bool {
	return p.Author != nil && p.Author.ID == userID
}
