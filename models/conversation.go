package models

import "time"

// Conversation is a direct or group DM.
type Conversation struct {
	ID             string    `gorm:"primaryKey;size:64" json:"id"`
	OrganizationID string    `gorm:"column:organization_id;not null;index" json:"organizationId"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ConversationParticipant struct {
	ConversationID string    `gorm:"column:conversation_id;primaryKey" json:"conversationId"`
	UserID         string    `gorm:"column:user_id;primaryKey;index" json:"userId"`
	JoinedAt       time.Time `gorm:"autoCreateTime" json:"joinedAt"`
}
