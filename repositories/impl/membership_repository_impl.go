package impl

import (
	"context"

	"Huddle/models"

	"gorm.io/gorm"
)

type MembershipRepositoryImpl struct {
	DB *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepositoryImpl {
	return &MembershipRepositoryImpl{DB: db}
}

func (r *MembershipRepositoryImpl) exists(ctx context.Context, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(model).Where(query, args...).Limit(1).Count(&count).Error
	return count > 0, err
}

func (r *MembershipRepositoryImpl) IsChannelMember(ctx context.Context, channelID, userID string) (bool, error) {
	ok, err := r.exists(ctx, &models.ChannelMember{}, "channel_id = ? AND user_id = ?", channelID, userID)
	return ok, translate(err, "membershipRepository.IsChannelMember")
}

func (r *MembershipRepositoryImpl) IsConversationParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	ok, err := r.exists(ctx, &models.ConversationParticipant{}, "conversation_id = ? AND user_id = ?", conversationID, userID)
	return ok, translate(err, "membershipRepository.IsConversationParticipant")
}

func (r *MembershipRepositoryImpl) IsOrganizationMember(ctx context.Context, organizationID, userID string) (bool, error) {
	ok, err := r.exists(ctx, &models.OrganizationMember{}, "organization_id = ? AND user_id = ?", organizationID, userID)
	return ok, translate(err, "membershipRepository.IsOrganizationMember")
}

func (r *MembershipRepositoryImpl) FindChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	var channel models.Channel
	if err := r.DB.WithContext(ctx).Where("id = ?", channelID).First(&channel).Error; err != nil {
		return nil, translate(err, "membershipRepository.FindChannel")
	}
	return &channel, nil
}

func (r *MembershipRepositoryImpl) FindNote(ctx context.Context, noteID string) (*models.Note, error) {
	var note models.Note
	if err := r.DB.WithContext(ctx).Where("id = ?", noteID).First(&note).Error; err != nil {
		return nil, translate(err, "membershipRepository.FindNote")
	}
	return &note, nil
}

// ListMemberIDs returns the channel members or conversation participants.
func (r *MembershipRepositoryImpl) ListMemberIDs(ctx context.Context, container models.ContainerRef) ([]string, error) {
	var ids []string
	var err error
	switch container.Kind {
	case models.ContainerConversation:
		err = r.DB.WithContext(ctx).Model(&models.ConversationParticipant{}).
			Where("conversation_id = ?", container.ID).
			Pluck("user_id", &ids).Error
	default:
		err = r.DB.WithContext(ctx).Model(&models.ChannelMember{}).
			Where("channel_id = ?", container.ID).
			Pluck("user_id", &ids).Error
	}
	if err != nil {
		return nil, translate(err, "membershipRepository.ListMemberIDs")
	}
	return ids, nil
}
