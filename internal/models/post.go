// Package models contains data structures for the application's domain models.
package models

import "time"

// Post is the aggregate root for a status update together with its likes and comments.
// Likes and Comments are kept newest first.
type Post struct {
	ID       string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Text     string    `gorm:"type:text;not null" bson:"text" json:"text"`
	Name     string    `bson:"name" json:"name"`
	Avatar   string    `bson:"avatar" json:"avatar"`
	UserID   string    `gorm:"type:varchar(36);not null;index" bson:"user" json:"user"`
	Likes    []Like    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" bson:"likes" json:"likes"`
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" bson:"comments" json:"comments"`
	Date     time.Time `gorm:"not null;index" bson:"date" json:"date"`
}

// Like records that a user liked a post. A user appears at most once per post.
type Like struct {
	// Seq orders likes by insertion in relational stores.
	Seq    uint   `gorm:"primaryKey;autoIncrement" bson:"-" json:"-"`
	PostID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_like_post_user" bson:"-" json:"-"`
	UserID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_like_post_user" bson:"user" json:"user"`
}

// Comment is a reply embedded in a post.
type Comment struct {
	Seq    uint      `gorm:"primaryKey;autoIncrement" bson:"-" json:"-"`
	ID     string    `gorm:"type:varchar(36);not null;uniqueIndex" bson:"_id" json:"id"`
	PostID string    `gorm:"type:varchar(36);not null;index" bson:"-" json:"-"`
	Text   string    `gorm:"type:text;not null" bson:"text" json:"text"`
	Name   string    `bson:"name" json:"name"`
	Avatar string    `bson:"avatar" json:"avatar"`
	UserID string    `gorm:"type:varchar(36);not null" bson:"user" json:"user"`
	Date   time.Time `gorm:"not null" bson:"date" json:"date"`
}

// Normalize replaces nil collections so they serialize as empty arrays.
func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = []Like{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}
