package service

import (
	"testing"

	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHistoryTurns(t *testing.T) {
	sc := &models.StructuredContent{Headline: "h", Description: "d", CTA: "c", Hashtags: "#x", Platform: models.PlatformTikTok}
	messages := []models.ChatMessage{
		{ID: "1", Role: models.RoleUser, Content: "primeira", Image: jpegImage()},
		{ID: "2", Role: models.RoleAssistant, Content: "resposta", Structured: sc},
		{ID: "3", Role: models.RoleUser, Content: "segunda"},
		{ID: "4", Role: models.RoleAssistant, Content: "texto livre"},
	}

	turns := ToHistoryTurns(messages)

	require.Len(t, turns, len(messages))
	assert.Equal(t, []models.HistoryTurn{
		{Role: models.HistoryRoleUser, Content: "primeira"},
		{Role: models.HistoryRoleModel, Content: "resposta"},
		{Role: models.HistoryRoleUser, Content: "segunda"},
		{Role: models.HistoryRoleModel, Content: "texto livre"},
	}, turns)
}

func TestToHistoryTurnsEmpty(t *testing.T) {
	assert.Empty(t, ToHistoryTurns(nil))
	assert.Empty(t, ToHistoryTurns([]models.ChatMessage{}))
}

func TestMessagesFromHistory(t *testing.T) {
	turns := []models.HistoryTurn{
		{Role: models.HistoryRoleUser, Content: "oi"},
		{Role: models.HistoryRoleModel, Content: "olá"},
	}

	messages := MessagesFromHistory(turns)

	require.Len(t, messages, 2)
	assert.Equal(t, models.RoleUser, messages[0].Role)
	assert.Equal(t, models.RoleAssistant, messages[1].Role)
	assert.NotEmpty(t, messages[0].ID)
	assert.NotEqual(t, messages[0].ID, messages[1].ID)
	assert.Equal(t, turns, ToHistoryTurns(messages), "round trip keeps role and content")
}
