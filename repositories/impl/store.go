package impl

import (
	"context"

	"Huddle/repositories"

	"gorm.io/gorm"
)

// GormStore binds every repository to the same *gorm.DB, which is either
// the pool or an open transaction.
type GormStore struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Messages() repositories.MessageRepository {
	return NewMessageRepository(s.DB)
}

func (s *GormStore) Memberships() repositories.MembershipRepository {
	return NewMembershipRepository(s.DB)
}

func (s *GormStore) ReadStates() repositories.ReadStateRepository {
	return NewReadStateRepository(s.DB)
}

func (s *GormStore) ThreadParticipants() repositories.ThreadParticipantRepository {
	return NewThreadParticipantRepository(s.DB)
}

func (s *GormStore) WithinTransaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
