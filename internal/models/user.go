package models

import "time"

// User is a registered account. Password holds the bcrypt hash and never leaves the server.
type User struct {
	ID       string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Name     string    `gorm:"not null" bson:"name" json:"name"`
	Email    string    `gorm:"uniqueIndex;not null" bson:"email" json:"email"`
	Password string    `gorm:"not null" bson:"password" json:"-"`
	Date     time.Time `gorm:"not null" bson:"date" json:"date"`
}

// PublicUser is the identity view returned to clients.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
