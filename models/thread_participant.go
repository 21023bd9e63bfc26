package models

import "time"

// ThreadParticipant records who replied in a thread, for fan-out and "my threads".
type ThreadParticipant struct {
	ThreadID   string    `gorm:"column:thread_id;primaryKey" json:"threadId"`
	UserID     string    `gorm:"column:user_id;primaryKey;index" json:"userId"`
	LastSeenAt time.Time `gorm:"column:last_seen_at" json:"lastSeenAt"`
}
