package models

import "time"

type Settings struct {
	EnableSync bool `json:"enableSync" gorm:"not null;default:false"`
}

// Account is keyed by the identity provider's stable id. Token is the only
// credential accepted on non-auth endpoints and is never serialized.
type Account struct {
	ID        string       `json:"_id" gorm:"primaryKey;type:varchar(64)"`
	Username  string       `json:"username" gorm:"type:varchar(255);not null;default:''"`
	Avatar    string       `json:"avatar" gorm:"type:text"`
	Token     string       `json:"-" gorm:"type:varchar(128);not null;uniqueIndex"`
	ShareCode *string      `json:"shareCode,omitempty" gorm:"type:varchar(16);uniqueIndex"`
	Used      int64        `json:"used" gorm:"not null;default:0"`
	Storage   int64        `json:"storage" gorm:"not null;default:0"`
	Settings  Settings     `json:"settings" gorm:"embedded;embeddedPrefix:settings_"`
	Shares    []ShareGrant `json:"-" gorm:"foreignKey:AccountID"`
	Blocks    []Block      `json:"-" gorm:"foreignKey:AccountID"`
	CreatedAt time.Time    `json:"-"`
	UpdatedAt time.Time    `json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}

// RemainingStorage is never negative even if used drifted past storage.
func (a *Account) RemainingStorage() int64 {
	if a.Used >= a.Storage {
		return 0
	}
	return a.Storage - a.Used
}

// PublicProfile is what other accounts may learn about an account.
type PublicProfile struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

func (a *Account) PublicProfile() PublicProfile {
	return PublicProfile{ID: a.ID, Username: a.Username, Avatar: a.Avatar}
}
