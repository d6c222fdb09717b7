package models

import (
	"encoding/json"
	"time"
)

// Article is a stored listing item.
type Article struct {
	ID        string    `json:"_id"`
	Headline  string    `json:"headline"`
	URL       string    `json:"url"`
	User      string    `json:"user"`
	Likes     int64     `json:"likes"`
	CreatedAt time.Time `json:"created_at"`

	// CommentIDs lists the article's comments in append order.
	CommentIDs []string `json:"-"`
	// Comments is set only when the article was loaded with its comments.
	Comments []*Comment `json:"-"`
}

// MarshalJSON renders comments as objects when they were loaded and as ids
// otherwise.
func (a *Article) MarshalJSON() ([]byte, error) {
	type plain Article
	var comments any = a.CommentIDs
	if a.Comments != nil {
		comments = a.Comments
	} else if a.CommentIDs == nil {
		comments = []string{}
	}
	return json.Marshal(struct {
		*plain
		Comments any `json:"comments"`
	}{(*plain)(a), comments})
}

// Comment is a note attached to an article.
type Comment struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentInput is the payload accepted when commenting on an article.
type CommentInput struct {
	Title string `form:"title" json:"title"`
	Body  string `form:"body" json:"body" binding:"required"`
}
