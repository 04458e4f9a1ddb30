package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Username         string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email            string     `gorm:"size:254" json:"email"`
	Password         string     `gorm:"not null" json:"-"`
	FirstName        string     `gorm:"size:150" json:"first_name"`
	LastName         string     `gorm:"size:150" json:"last_name"`
	IsActive         bool       `gorm:"default:true" json:"-"`
	RefreshTokenHash string     `gorm:"size:64" json:"-"`
	LastLoginAt      *time.Time `json:"-"`
}
