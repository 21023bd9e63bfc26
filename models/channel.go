package models

import "time"

type Channel struct {
	ID             string    `gorm:"primaryKey;size:64" json:"id"`
	OrganizationID string    `gorm:"column:organization_id;not null;index" json:"organizationId"`
	Name           string    `gorm:"not null" json:"name"`
	IsPrivate      bool      `gorm:"column:is_private;default:false" json:"isPrivate"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ChannelMember struct {
	ChannelID string    `gorm:"column:channel_id;primaryKey" json:"channelId"`
	UserID    string    `gorm:"column:user_id;primaryKey;index" json:"userId"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joinedAt"`
}
