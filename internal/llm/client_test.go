package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPrompt(t *testing.T) {
	t.Parallel()

	t.Run("known personas resolve", func(t *testing.T) {
		t.Parallel()
		for _, persona := range []string{
			PersonaCodingAssistant,
			PersonaDataAnalyst,
			PersonaCreativeWriter,
			PersonaTutor,
		} {
			assert.NotEmpty(t, SystemPrompt(persona), persona)
		}
	})

	t.Run("unknown persona falls back to coding assistant", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, SystemPrompt(PersonaCodingAssistant), SystemPrompt("philosopher"))
	})
}

func TestUnconfiguredClient(t *testing.T) {
	t.Parallel()

	client, err := New(context.Background(), "", PersonaTutor, time.Minute)
	require.NoError(t, err)

	assert.False(t, client.Configured())
	assert.Equal(t, PersonaTutor, client.Persona())

	_, err = client.Generate(context.Background(), nil, "hello")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestChatMessageType(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, chatMessageType("assistant"), chatMessageType("user"))
}
