package models

import "time"

type UserAccount struct {
	JsonModel
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" gorm:"unique"`
	Password  string `json:"-"`
	Banned    bool   `gorm:"default:false" json:"-"`
	LastIp    string `json:"-"`
	Gender    string `json:"gender"`
	Age       *int   `json:"age"`
	// after how many wears an item flips to Needs Wash (profile setting)
	DaysUntilDirty      *int       `json:"days_until_dirty"`
	ConfirmedDeleteDate *time.Time `json:"-"`
}

type RegisterIn struct {
	Email     string `json:"email" validate:"required,email,max=200"`
	Password  string `json:"password" validate:"required,min=6,max=100"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"omitempty,max=100"`
}

type LoginIn struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenOut struct {
	AccessToken string `json:"access_token"`
	Email       string `json:"email"`
	Name        string `json:"name"`
}

type ProfileUpdateIn struct {
	FirstName       *string `json:"first_name" validate:"omitempty,max=100"`
	LastName        *string `json:"last_name" validate:"omitempty,max=100"`
	Gender          *string `json:"gender" validate:"omitempty,max=30"`
	Age             *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	DaysUntilDirty  *int    `json:"days_until_dirty" validate:"omitempty,gte=1,lte=60"`
	Password        *string `json:"password" validate:"omitempty,min=6,max=100"`
	ConfirmPassword *string `json:"confirm_password"`
}
