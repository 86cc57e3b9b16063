package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	ElabAPIKey   string    `gorm:"column:elab_api_key;not null;default:''" json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (user User) HasElabAPIKey() bool {
	return user.ElabAPIKey != ""
}
