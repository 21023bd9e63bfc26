package impl

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"Huddle/models"
	"Huddle/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraft(container models.ContainerRef, author string, parentID *string) *models.Message {
	now := time.Now().UTC()
	msg := models.NewMessage(uuid.NewString(), author, "hello", container, parentID)
	msg.CreatedAt = now
	msg.UpdatedAt = now
	return msg
}

func TestInsertWithNextSequence_StartsAtOneAndIncrements(t *testing.T) {
	repo := NewMessageRepository(requireDB(t))
	ctx := context.Background()
	channel := models.ChannelRef(uuid.NewString())

	first := newDraft(channel, "alice", nil)
	require.NoError(t, repo.InsertWithNextSequence(ctx, first))
	second := newDraft(channel, "bob", nil)
	require.NoError(t, repo.InsertWithNextSequence(ctx, second))

	assert.Equal(t, int64(1), first.Sequence)
	assert.Equal(t, int64(2), second.Sequence)

	// sequences are independent per container
	other := newDraft(models.ConversationRef(uuid.NewString()), "alice", nil)
	require.NoError(t, repo.InsertWithNextSequence(ctx, other))
	assert.Equal(t, int64(1), other.Sequence)
}

func TestInsertWithNextSequence_ConcurrentWritersNeverShareASequence(t *testing.T) {
	db := requireDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	channel := models.ChannelRef(uuid.NewString())

	const writers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	var sequences []int64
	conflicts := 0

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg := newDraft(channel, "alice", nil)
			err := repo.InsertWithNextSequence(ctx, msg)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, repositories.ErrSequenceConflict)
				conflicts++
				return
			}
			sequences = append(sequences, msg.Sequence)
		}()
	}
	wg.Wait()

	assert.Equal(t, writers, len(sequences)+conflicts)
	sort.Slice(sequences, func(i, j int) bool { return sequences[i] < sequences[j] })
	for i, seq := range sequences {
		assert.Equal(t, int64(i+1), seq)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	repo := NewMessageRepository(requireDB(t))

	_, err := repo.FindByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestSoftDelete_OnlyOnce(t *testing.T) {
	repo := NewMessageRepository(requireDB(t))
	ctx := context.Background()
	msg := newDraft(models.ChannelRef(uuid.NewString()), "alice", nil)
	require.NoError(t, repo.InsertWithNextSequence(ctx, msg))

	changed, err := repo.SoftDelete(ctx, msg.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.SoftDelete(ctx, msg.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, changed)

	stored, err := repo.FindByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted())
}

func TestRepliesAndReplyCount(t *testing.T) {
	repo := NewMessageRepository(requireDB(t))
	ctx := context.Background()
	channel := models.ChannelRef(uuid.NewString())

	parent := newDraft(channel, "alice", nil)
	require.NoError(t, repo.InsertWithNextSequence(ctx, parent))

	for i := 0; i < 3; i++ {
		reply := newDraft(channel, "bob", &parent.ID)
		require.NoError(t, repo.InsertWithNextSequence(ctx, reply))
		count, err := repo.IncrementReplyCount(ctx, parent.ID, time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, i+1, count)
	}

	replies, err := repo.ListReplies(ctx, parent.ID, 0, 2)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Less(t, replies[0].Sequence, replies[1].Sequence)

	rest, err := repo.ListReplies(ctx, parent.ID, replies[1].Sequence, 10)
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	_, err = repo.SoftDelete(ctx, parent.ID, time.Now().UTC())
	require.NoError(t, err)
	_, err = repo.IncrementReplyCount(ctx, parent.ID, time.Now().UTC())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCountUnreadAfter_SkipsOwnRepliesAndDeleted(t *testing.T) {
	repo := NewMessageRepository(requireDB(t))
	ctx := context.Background()
	channel := models.ChannelRef(uuid.NewString())

	own := newDraft(channel, "alice", nil)
	require.NoError(t, repo.InsertWithNextSequence(ctx, own))
	theirs := newDraft(channel, "bob", nil)
	require.NoError(t, repo.InsertWithNextSequence(ctx, theirs))
	reply := newDraft(channel, "bob", &theirs.ID)
	require.NoError(t, repo.InsertWithNextSequence(ctx, reply))
	deleted := newDraft(channel, "bob", nil)
	require.NoError(t, repo.InsertWithNextSequence(ctx, deleted))
	_, err := repo.SoftDelete(ctx, deleted.ID, time.Now().UTC())
	require.NoError(t, err)

	count, err := repo.CountUnreadAfter(ctx, channel, 0, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	latest, err := repo.LatestSequence(ctx, channel)
	require.NoError(t, err)
	assert.Equal(t, int64(4), latest)
}
