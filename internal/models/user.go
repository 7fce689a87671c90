package models

import "time"

// User roles. There is no permission matrix beyond this: admins manage
// accounts, everyone else uses the application.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Senha     string    `gorm:"size:255;not null" json:"-"`
	Nome      string    `gorm:"size:255;not null" json:"nome"`
	Role      string    `gorm:"size:20;not null;default:'user'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string { return "usuarios" }

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
