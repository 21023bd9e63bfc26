package models

import (
	"time"
)

// MaxContentLength is counted in characters, not bytes.
const MaxContentLength = 10000

// Message is one unit of conversation content. Exactly one of ChannelID and
// ConversationID is set; Sequence is unique within that container.
type Message struct {
	ID             string     `gorm:"primaryKey;size:64" json:"id"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	AuthorID       string     `gorm:"column:author_id;not null;index" json:"authorId"`
	ChannelID      *string    `gorm:"column:channel_id;uniqueIndex:idx_messages_channel_seq,priority:1" json:"channelId,omitempty"`
	ConversationID *string    `gorm:"column:conversation_id;uniqueIndex:idx_messages_conversation_seq,priority:1" json:"conversationId,omitempty"`
	ParentID       *string    `gorm:"column:parent_id;index" json:"parentId,omitempty"`
	ReplyCount     int        `gorm:"column:reply_count;not null;default:0" json:"replyCount"`
	Sequence       int64      `gorm:"column:sequence;not null;uniqueIndex:idx_messages_channel_seq,priority:2;uniqueIndex:idx_messages_conversation_seq,priority:2" json:"sequence"`
	DeletedAt      *time.Time `gorm:"column:deleted_at" json:"deletedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// NewMessage builds an unsequenced draft inside the given container.
func NewMessage(id, authorID, content string, container ContainerRef, parentID *string) *Message {
	msg := &Message{
		ID:       id,
		AuthorID: authorID,
		Content:  content,
		ParentID: parentID,
	}
	msg.SetContainer(container)
	return msg
}

func (m *Message) SetContainer(c ContainerRef) {
	id := c.ID
	if c.Kind == ContainerConversation {
		m.ConversationID = &id
		m.ChannelID = nil
		return
	}
	m.ChannelID = &id
	m.ConversationID = nil
}

func (m Message) Container() ContainerRef {
	if m.ConversationID != nil {
		return ConversationRef(*m.ConversationID)
	}
	if m.ChannelID != nil {
		return ChannelRef(*m.ChannelID)
	}
	return ContainerRef{}
}

func (m Message) IsReply() bool {
	return m.ParentID != nil && *m.ParentID != ""
}

func (m Message) IsDeleted() bool {
	return m.DeletedAt != nil
}
