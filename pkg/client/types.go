package client

import "time"

type User struct {
	ID              string    `json:"_id"`
	Email           string    `json:"email"`
	Username        string    `json:"username"`
	GoogleID        string    `json:"googleId,omitempty"`
	IsSetupComplete bool      `json:"isSetupComplete"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Author is who a record is shown as; anonymous comments carry a pseudo-id.
type Author struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

type Opinion struct {
	ID            string    `json:"_id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	ContentHTML   string    `json:"contentHtml"`
	Topic         string    `json:"topic"`
	Author        *Author   `json:"userId"` // nil when anonymous
	IsAnonymous   bool      `json:"isAnonymous"`
	Views         int       `json:"views"`
	Helpful       int       `json:"helpful"`
	NotHelpful    int       `json:"notHelpful"`
	CommentsCount int       `json:"commentsCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Comment struct {
	ID          string    `json:"_id"`
	Content     string    `json:"content"`
	OpinionID   string    `json:"opinionId"`
	ParentID    *string   `json:"parentId"`
	Author      Author    `json:"userId"`
	IsAnonymous bool      `json:"isAnonymous"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (c Comment) ThreadID() string { return c.ID }

func (c Comment) ThreadParentID() string {
	if c.ParentID == nil {
		return ""
	}
	return *c.ParentID
}

type ThreadedComment struct {
	Comment
	Replies []*ThreadedComment `json:"replies"`
}

type Topic struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type NewOpinion struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Topic       string `json:"topic"`
	IsAnonymous bool   `json:"isAnonymous"`
}

type NewComment struct {
	Content     string `json:"content"`
	OpinionID   string `json:"opinionId"`
	ParentID    string `json:"parentId,omitempty"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// ListOptions filters the opinion feed. Zero values use the server defaults.
type ListOptions struct {
	Topic  string
	Sort   string
	UserID string
	Page   int
}

type authResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
