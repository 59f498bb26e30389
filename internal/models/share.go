package models

import "time"

// ShareGrant lives on the viewer's account: AccountID may see Photo owned by
// UserID.
type ShareGrant struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	AccountID string    `json:"-" gorm:"type:varchar(64);not null;uniqueIndex:idx_share_grant"`
	UserID    string    `json:"userId" gorm:"type:varchar(64);not null;uniqueIndex:idx_share_grant;index"`
	Photo     string    `json:"photo" gorm:"type:varchar(255);not null;uniqueIndex:idx_share_grant"`
	CreatedAt time.Time `json:"-"`
}

func (ShareGrant) TableName() string {
	return "share_grants"
}

// Block stops BlockedID from resolving AccountID's share code.
type Block struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	AccountID string    `json:"-" gorm:"type:varchar(64);not null;uniqueIndex:idx_account_block"`
	BlockedID string    `json:"blockedId" gorm:"type:varchar(64);not null;uniqueIndex:idx_account_block"`
	CreatedAt time.Time `json:"-"`
}

func (Block) TableName() string {
	return "account_blocks"
}
