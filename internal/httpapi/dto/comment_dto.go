package dto

import (
	"time"

	"reviewhub/internal/httpapi/models"
)

type CreateCommentDTO struct {
	Text string `json:"text" binding:"required,max=500"`
}

type UpdateCommentDTO struct {
	Text *string `json:"text" binding:"omitempty,max=500"`
}

type CommentResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

func FromModelToCommentResponse(c *models.Comment) *CommentResponse {
	return &CommentResponse{
		ID:      c.ID,
		Text:    c.Text,
		Author:  c.Author.Username,
		PubDate: c.CreatedAt,
	}
}
