package models

import "time"

// User is a person who can hold memberships at several gyms.
type User struct {
	Base
	Email                 string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"email"`
	PasswordHash          string     `gorm:"type:varchar(100);not null" json:"-"`
	FirstName             string     `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName              string     `gorm:"type:varchar(100)" json:"lastName"`
	Phone                 string     `gorm:"type:varchar(30)" json:"phone"`
	BirthDate             *time.Time `gorm:"type:date" json:"birthDate"`
	TelegramID            *int64     `gorm:"uniqueIndex" json:"telegramId"`
	TelegramLinkCode      string     `gorm:"type:varchar(6);uniqueIndex:idx_user_link_code,where:telegram_link_code <> ''" json:"-"`
	TelegramLinkExpiresAt *time.Time `json:"-"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
