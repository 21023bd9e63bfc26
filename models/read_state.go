package models

import "time"

// ReadState is the per-(user, container) unread cursor.
// UnreadCount counts non-deleted top-level messages after LastReadSequence
// that the user did not author.
type ReadState struct {
	UserID           string        `gorm:"column:user_id;primaryKey" json:"userId"`
	ContainerKind    ContainerKind `gorm:"column:container_kind;primaryKey;type:varchar(16)" json:"containerKind"`
	ContainerID      string        `gorm:"column:container_id;primaryKey" json:"containerId"`
	LastReadSequence int64         `gorm:"column:last_read_sequence;not null;default:0" json:"lastReadSequence"`
	UnreadCount      int64         `gorm:"column:unread_count;not null;default:0" json:"unreadCount"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

func (r ReadState) Container() ContainerRef {
	return ContainerRef{Kind: r.ContainerKind, ID: r.ContainerID}
}
