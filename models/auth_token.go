package models

import "time"

// AuthToken is the server side record of an issued login token. Only the
// digest of the token id is stored.
type AuthToken struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Digest          string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	User            *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Expiry          time.Time `gorm:"not null" json:"expiry"`
	LastRefreshedAt time.Time `gorm:"not null" json:"last_refreshed_at"`
	CreatedAt       time.Time `json:"created_at"`
}
