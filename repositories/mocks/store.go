package mocks

import (
	"context"

	"Huddle/repositories"

	"github.com/stretchr/testify/mock"
)

// Store hands out the mock repositories. WithinTransaction runs fn inline
// against the same mocks; set TxErr to fail the commit.
type Store struct {
	MessageRepo           *MessageRepository
	MembershipRepo        *MembershipRepository
	ReadStateRepo         *ReadStateRepository
	ThreadParticipantRepo *ThreadParticipantRepository

	TxErr        error
	Transactions int
}

func NewStore() *Store {
	return &Store{
		MessageRepo:           new(MessageRepository),
		MembershipRepo:        new(MembershipRepository),
		ReadStateRepo:         new(ReadStateRepository),
		ThreadParticipantRepo: new(ThreadParticipantRepository),
	}
}

func (s *Store) Messages() repositories.MessageRepository { return s.MessageRepo }

func (s *Store) Memberships() repositories.MembershipRepository { return s.MembershipRepo }

func (s *Store) ReadStates() repositories.ReadStateRepository { return s.ReadStateRepo }

func (s *Store) ThreadParticipants() repositories.ThreadParticipantRepository {
	return s.ThreadParticipantRepo
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	s.Transactions++
	if err := fn(s); err != nil {
		return err
	}
	return s.TxErr
}

func (s *Store) AssertExpectations(t mock.TestingT) {
	s.MessageRepo.AssertExpectations(t)
	s.MembershipRepo.AssertExpectations(t)
	s.ReadStateRepo.AssertExpectations(t)
	s.ThreadParticipantRepo.AssertExpectations(t)
}
