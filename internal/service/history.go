package service

import (
	"github.com/google/uuid"
	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/samber/lo"
)

// ToHistoryTurns projects messages to the adapter's wire form. Order and
// length are preserved; images and structured payloads are dropped.
func ToHistoryTurns(messages []models.ChatMessage) []models.HistoryTurn {
	return lo.Map(messages, func(m models.ChatMessage, _ int) models.HistoryTurn {
		role := models.HistoryRoleUser
		if m.Role == models.RoleAssistant {
			role = models.HistoryRoleModel
		}
		return models.HistoryTurn{Role: role, Content: m.Content}
	})
}

// MessagesFromHistory seeds conversation messages from client supplied turns.
func MessagesFromHistory(turns []models.HistoryTurn) []models.ChatMessage {
	return lo.Map(turns, func(t models.HistoryTurn, _ int) models.ChatMessage {
		role := models.RoleUser
		if t.Role == models.HistoryRoleModel {
			role = models.RoleAssistant
		}
		return models.ChatMessage{
			ID:      uuid.NewString(),
			Role:    role,
			Content: t.Content,
		}
	})
}
