package models

import "time"

// UserModel is an admin account.
type UserModel struct {
	Base
	Tenant
	Username      string     `json:"username"        gorm:"size:191;uniqueIndex;not null"`
	Password      string     `json:"-"               gorm:"not null"`
	Role          string     `json:"role"            gorm:"size:16;not null;default:viewer"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
}

func (UserModel) TableName() string { return "users" }
