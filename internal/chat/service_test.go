package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/duleab/ai-agent/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Conversation{}, &models.Message{}))
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		APIKey:       username + "_key",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	return NewService(db, nil, zap.NewNop()), db
}

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("without identifier returns unsaved conversation", func(t *testing.T) {
		t.Parallel()

		svc, db := newTestService(t)
		actor := newTestUser(t, db, "alice")

		conversation, created, err := svc.Resolve(actor, nil, "Hello")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "Hello", conversation.Title)
		assert.Equal(t, actor.ID, conversation.UserID)

		// Nothing persisted until the first exchange commits
		var count int64
		require.NoError(t, db.Model(&models.Conversation{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("unknown identifier fails with not found", func(t *testing.T) {
		t.Parallel()

		svc, db := newTestService(t)
		actor := newTestUser(t, db, "alice")

		id := uuid.New()
		_, _, err := svc.Resolve(actor, &id, "Hello")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("identifier owned by another user fails with not found", func(t *testing.T) {
		t.Parallel()

		svc, db := newTestService(t)
		alice := newTestUser(t, db, "alice")
		bob := newTestUser(t, db, "bob")

		conversation := models.Conversation{UserID: bob.ID, Title: "bob's"}
		require.NoError(t, db.Create(&conversation).Error)

		_, _, err := svc.Resolve(alice, &conversation.ID, "Hello")
		assert.ErrorIs(t, err, ErrNotFound)

		// No conversation silently created for alice
		var count int64
		require.NoError(t, db.Model(&models.Conversation{}).Where("user_id = ?", alice.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("existing identifier resolves without creating", func(t *testing.T) {
		t.Parallel()

		svc, db := newTestService(t)
		actor := newTestUser(t, db, "alice")

		conversation := models.Conversation{UserID: actor.ID, Title: "mine"}
		require.NoError(t, db.Create(&conversation).Error)

		resolved, created, err := svc.Resolve(actor, &conversation.ID, "Hello")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, conversation.ID, resolved.ID)
	})
}

func TestAppendExchange(t *testing.T) {
	t.Parallel()

	t.Run("first exchange creates conversation and two messages", func(t *testing.T) {
		t.Parallel()

		svc, db := newTestService(t)
		actor := newTestUser(t, db, "alice")

		conversation, created, err := svc.Resolve(actor, nil, "Hello")
		require.NoError(t, err)
		require.NoError(t, svc.AppendExchange(context.Background(), conversation, created, "Hello", "Hi there, how can I help?"))

		var convCount int64
		require.NoError(t, db.Model(&models.Conversation{}).Count(&convCount).Error)
		assert.EqualValues(t, 1, convCount)

		var messages []models.Message
		require.NoError(t, db.Where("conversation_id = ?", conversation.ID).Order("timestamp ASC").Find(&messages).Error)
		require.Len(t, messages, 2)
		assert.Equal(t, models.RoleUser, messages[0].Role)
		assert.Equal(t, "Hello", messages[0].Content)
		assert.Zero(t, messages[0].Tokens)
		assert.Equal(t, models.RoleAssistant, messages[1].Role)
		assert.Equal(t, 6, messages[1].Tokens)
		assert.True(t, messages[1].Timestamp.After(messages[0].Timestamp))
	})

	t.Run("advances conversation updated_at", func(t *testing.T) {
		t.Parallel()

		svc, db := newTestService(t)
		actor := newTestUser(t, db, "alice")

		conversation := models.Conversation{
			UserID:    actor.ID,
			Title:     "old",
			UpdatedAt: time.Now().Add(-time.Hour),
		}
		require.NoError(t, db.Create(&conversation).Error)
		before := conversation.UpdatedAt

		require.NoError(t, svc.AppendExchange(context.Background(), &conversation, false, "more", "reply"))

		var reloaded models.Conversation
		require.NoError(t, db.First(&reloaded, "id = ?", conversation.ID).Error)
		assert.True(t, reloaded.UpdatedAt.After(before))
	})
}

func TestHistory(t *testing.T) {
	t.Parallel()

	t.Run("returns every prior turn oldest first", func(t *testing.T) {
		t.Parallel()

		svc, db := newTestService(t)
		actor := newTestUser(t, db, "alice")

		conversation, created, err := svc.Resolve(actor, nil, "first question")
		require.NoError(t, err)
		require.NoError(t, svc.AppendExchange(context.Background(), conversation, created, "first question", "first answer"))
		require.NoError(t, svc.AppendExchange(context.Background(), conversation, false, "second question", "second answer"))

		turns, err := svc.History(context.Background(), conversation.ID)
		require.NoError(t, err)
		require.Len(t, turns, 4)
		assert.Equal(t, "first question", turns[0].Content)
		assert.Equal(t, models.RoleUser, turns[0].Role)
		assert.Equal(t, "first answer", turns[1].Content)
		assert.Equal(t, models.RoleAssistant, turns[1].Role)
		assert.Equal(t, "second question", turns[2].Content)
		assert.Equal(t, "second answer", turns[3].Content)
	})

	t.Run("empty conversation yields no turns", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTestService(t)

		turns, err := svc.History(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Empty(t, turns)
	})
}

func TestList(t *testing.T) {
	t.Parallel()

	t.Run("orders by most recently updated first", func(t *testing.T) {
		t.Parallel()

		svc, db := newTestService(t)
		actor := newTestUser(t, db, "alice")

		older := models.Conversation{UserID: actor.ID, Title: "older", UpdatedAt: time.Now().Add(-time.Hour)}
		newer := models.Conversation{UserID: actor.ID, Title: "newer", UpdatedAt: time.Now()}
		require.NoError(t, db.Create(&older).Error)
		require.NoError(t, db.Create(&newer).Error)

		summaries, err := svc.List(actor)
		require.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.Equal(t, "newer", summaries[0].Title)
		assert.Equal(t, "older", summaries[1].Title)
	})

	t.Run("includes message counts", func(t *testing.T) {
		t.Parallel()

		svc, db := newTestService(t)
		actor := newTestUser(t, db, "alice")

		conversation, created, err := svc.Resolve(actor, nil, "hi")
		require.NoError(t, err)
		require.NoError(t, svc.AppendExchange(context.Background(), conversation, created, "hi", "hello"))

		summaries, err := svc.List(actor)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.EqualValues(t, 2, summaries[0].MessageCount)
	})

	t.Run("excludes other users conversations", func(t *testing.T) {
		t.Parallel()

		svc, db := newTestService(t)
		alice := newTestUser(t, db, "alice")
		bob := newTestUser(t, db, "bob")

		require.NoError(t, db.Create(&models.Conversation{UserID: bob.ID, Title: "bob's"}).Error)

		summaries, err := svc.List(alice)
		require.NoError(t, err)
		assert.Empty(t, summaries)
	})
}

func TestGet(t *testing.T) {
	t.Parallel()

	t.Run("returns conversation with ordered messages", func(t *testing.T) {
		t.Parallel()

		svc, db := newTestService(t)
		actor := newTestUser(t, db, "alice")

		conversation, created, err := svc.Resolve(actor, nil, "hi")
		require.NoError(t, err)
		require.NoError(t, svc.AppendExchange(context.Background(), conversation, created, "hi", "hello"))

		loaded, messages, err := svc.Get(actor, conversation.ID)
		require.NoError(t, err)
		assert.Equal(t, conversation.ID, loaded.ID)
		require.Len(t, messages, 2)
		assert.Equal(t, models.RoleUser, messages[0].Role)
		assert.Equal(t, models.RoleAssistant, messages[1].Role)
	})

	t.Run("not found for foreign conversation", func(t *testing.T) {
		t.Parallel()

		svc, db := newTestService(t)
		alice := newTestUser(t, db, "alice")
		bob := newTestUser(t, db, "bob")

		conversation := models.Conversation{UserID: bob.ID, Title: "bob's"}
		require.NoError(t, db.Create(&conversation).Error)

		_, _, err := svc.Get(alice, conversation.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
