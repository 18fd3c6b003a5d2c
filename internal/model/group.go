package model

import "time"

// Group owns the time frames of one household or chat.
type Group struct {
	ID             uint  `gorm:"primaryKey"`
	TelegramChatID int64 `gorm:"uniqueIndex"`
	Name           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	TimeFrames     []TimeFrame `gorm:"foreignKey:GroupID"`
}
