package models

import "time"

const MaxCommentLength = 800

type Comment struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id,omitempty"`
	AuthorEmail string    `json:"author_email,omitempty"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

type PostCommentRequest struct {
	ShareToken string `json:"share_token" form:"shareToken"`
	Text       string `json:"text" form:"text"`
}
