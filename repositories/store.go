package repositories

import "context"

// Store groups the repositories that share one unit of work.
type Store interface {
	Messages() MessageRepository
	Memberships() MembershipRepository
	ReadStates() ReadStateRepository
	ThreadParticipants() ThreadParticipantRepository

	// WithinTransaction runs fn against a transactional Store. Any error
	// returned by fn rolls back everything fn wrote.
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
}
