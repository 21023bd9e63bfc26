package models

import "time"

// Note is a collaboratively edited document scoped to a workspace and
// optionally to one of its channels.
type Note struct {
	ID             string    `gorm:"primaryKey;size:64" json:"id"`
	OrganizationID string    `gorm:"column:organization_id;not null;index" json:"organizationId"`
	ChannelID      *string   `gorm:"column:channel_id;index" json:"channelId,omitempty"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"createdAt"`
}
