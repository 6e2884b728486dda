package models

import "time"

type Review struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	Score     int       `json:"score" gorm:"not null"`
	AuthorID  int64     `json:"-" gorm:"not null;uniqueIndex:uniq_review_author_title,priority:1"`
	TitleID   int64     `json:"-" gorm:"not null;uniqueIndex:uniq_review_author_title,priority:2"`
	CreatedAt time.Time `json:"pub_date" gorm:"autoCreateTime"`

	// Associations
	Author User  `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Title  Title `json:"-" gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE;"`
}

func (Review) TableName() string {
	return "reviews"
}

// AuthorUserID implements permission.Authored.
func (r *Review) AuthorUserID() int64 {
	return r.AuthorID
}
