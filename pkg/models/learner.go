package models

import "time"

// Learner is a reminder subscription for one course
type Learner struct {
	ID                  int64     `json:"id" db:"id"`
	ChatID              int64     `json:"chat_id" db:"chat_id"` // Telegram chat to notify
	Course              string    `json:"course_name" db:"course_name"`
	NotificationEnabled bool      `json:"notification_enabled" db:"notification_enabled"`
	NotificationHour    int       `json:"notification_hour" db:"notification_hour"` // UTC hour, 0-23
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}
