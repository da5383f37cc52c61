package model

import "time"

type Account struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"not null;uniqueIndex:idx_accounts_username"`
	Email        string `gorm:"not null;uniqueIndex:idx_accounts_email"`
	PasswordHash string `gorm:"not null" json:"-"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Account) TableName() string { return "accounts" }

type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Criteria is an equality filter over account columns.
type Criteria map[string]string
