package models

// Tables lists every model owned by this service, in migration order.
func Tables() []interface{} {
	return []interface{}{
		&Channel{},
		&ChannelMember{},
		&Conversation{},
		&ConversationParticipant{},
		&OrganizationMember{},
		&Message{},
		&ThreadParticipant{},
		&ReadState{},
		&Note{},
	}
}
