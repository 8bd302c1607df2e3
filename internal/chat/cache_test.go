package chat

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/duleab/ai-agent/internal/models"
)

func newCachedService(t *testing.T) (*Service, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	db := newTestDB(t)
	return NewService(db, client, zap.NewNop()), db, mr
}

func seedExchanges(t *testing.T, svc *Service, actor models.User, exchanges [][2]string) *models.Conversation {
	t.Helper()

	conversation, created, err := svc.Resolve(actor, nil, exchanges[0][0])
	require.NoError(t, err)
	for _, exchange := range exchanges {
		require.NoError(t, svc.AppendExchange(context.Background(), conversation, created, exchange[0], exchange[1]))
		created = false
	}
	return conversation
}

func TestHistoryCache(t *testing.T) {
	t.Parallel()

	t.Run("warm cache extends with each committed exchange", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newCachedService(t)
		actor := newTestUser(t, svc.db, "alice")
		conversation := seedExchanges(t, svc, actor, [][2]string{{"q1", "a1"}})

		// History fills the cache, the next append extends it
		_, err := svc.History(context.Background(), conversation.ID)
		require.NoError(t, err)
		require.NoError(t, svc.AppendExchange(context.Background(), conversation, false, "q2", "a2"))

		turns, err := svc.History(context.Background(), conversation.ID)
		require.NoError(t, err)
		require.Len(t, turns, 4)
		assert.Equal(t, "q1", turns[0].Content)
		assert.Equal(t, "a2", turns[3].Content)
	})

	t.Run("append after eviction does not cache a truncated thread", func(t *testing.T) {
		t.Parallel()

		svc, _, mr := newCachedService(t)
		actor := newTestUser(t, svc.db, "alice")
		conversation := seedExchanges(t, svc, actor, [][2]string{{"q1", "a1"}, {"q2", "a2"}})

		_, err := svc.History(context.Background(), conversation.ID)
		require.NoError(t, err)

		// Eviction between the fill and the next exchange's append: the
		// append must not leave a list holding only the newest turns
		mr.FlushAll()
		require.NoError(t, svc.AppendExchange(context.Background(), conversation, false, "q3", "a3"))

		turns, err := svc.History(context.Background(), conversation.ID)
		require.NoError(t, err)
		require.Len(t, turns, 6)
		assert.Equal(t, "q1", turns[0].Content)
		assert.Equal(t, models.RoleUser, turns[0].Role)
		assert.Equal(t, "a3", turns[5].Content)
		assert.Equal(t, models.RoleAssistant, turns[5].Role)
	})

	t.Run("first exchange of a new conversation leaves the key cold", func(t *testing.T) {
		t.Parallel()

		svc, _, mr := newCachedService(t)
		actor := newTestUser(t, svc.db, "alice")
		conversation := seedExchanges(t, svc, actor, [][2]string{{"q1", "a1"}})

		// Nothing filled the key yet, so the append must not create it
		assert.False(t, mr.Exists("conversation:"+conversation.ID.String()+":messages"))

		turns, err := svc.History(context.Background(), conversation.ID)
		require.NoError(t, err)
		require.Len(t, turns, 2)
	})

	t.Run("unreachable cache falls back to the database", func(t *testing.T) {
		t.Parallel()

		svc, _, mr := newCachedService(t)
		actor := newTestUser(t, svc.db, "alice")
		conversation := seedExchanges(t, svc, actor, [][2]string{{"q1", "a1"}})

		mr.Close()

		turns, err := svc.History(context.Background(), conversation.ID)
		require.NoError(t, err)
		require.Len(t, turns, 2)
	})
}
