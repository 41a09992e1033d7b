package model

import "time"

// DispatchRecord is one attempt to deliver a speed command to the fan controller.
type DispatchRecord struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	Level      int       `gorm:"not null" json:"level"`
	Command    string    `gorm:"size:16;not null" json:"command"`
	Address    string    `gorm:"size:255;not null" json:"address"`
	OK         bool      `gorm:"not null" json:"ok"`
	StatusCode int       `json:"statusCode"`
	Error      string    `gorm:"size:1024" json:"error,omitempty"`
	SentAt     time.Time `gorm:"not null;index" json:"sentAt"`
}
