package models

import "time"

type OrganizationMember struct {
	OrganizationID string    `gorm:"column:organization_id;primaryKey" json:"organizationId"`
	UserID         string    `gorm:"column:user_id;primaryKey;index" json:"userId"`
	Role           string    `gorm:"not null;default:'member'" json:"role"`
	JoinedAt       time.Time `gorm:"autoCreateTime" json:"joinedAt"`
}
