package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username string `gorm:"unique;not null"`
	Email    string `gorm:"unique;not null"`
	Name     string // display name printed on certificates
	Role     string `gorm:"default:user"` // user, admin
}
