package server

import (
	"net/http"

	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/raphaelgruber/contentpilot/internal/service"
	"github.com/samber/lo"
)

func (a *api) handleChat(w http.ResponseWriter, r *http.Request) {
	var sub service.Submission
	if !a.decode(w, r, &sub) {
		return
	}

	state, out := a.orch.Submit(r.Context(), sub)
	if out.Err != nil {
		status, _ := classify(out.Err)
		respondJSON(w, status, newTurnResponse("", out))
		return
	}

	resp := newTurnResponse("", out)
	resp.History = service.ToHistoryTurns(state.Messages)
	respondJSON(w, http.StatusOK, resp)
}

type createSessionRequest struct {
	Mode     string  `json:"mode"`
	Platform *string `json:"platform"`
}

func (a *api) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 && !a.decode(w, r, &req) {
		return
	}

	mode, err := models.ParseMode(req.Mode)
	if err != nil {
		a.handleError(w, r, err)
		return
	}
	platform, err := parseOptionalPlatform(req.Platform)
	if err != nil {
		a.handleError(w, r, err)
		return
	}

	session, err := a.sessions.Create(mode, platform)
	if err != nil {
		a.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newSessionResponse(session))
}

func (a *api) handleListSessions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, lo.Map(a.sessions.List(), func(s *service.Session, _ int) sessionResponse {
		return newSessionResponse(s)
	}))
}

func (a *api) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := a.sessions.Get(r.PathValue("id"))
	if err != nil {
		a.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newSessionResponse(session))
}

// updateSessionRequest changes selections for the next turn. An absent field
// is left alone; an empty platform clears the selection.
type updateSessionRequest struct {
	Mode     *string `json:"mode"`
	Platform *string `json:"platform"`
}

func (a *api) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	session, err := a.sessions.Get(r.PathValue("id"))
	if err != nil {
		a.handleError(w, r, err)
		return
	}

	var req updateSessionRequest
	if !a.decode(w, r, &req) {
		return
	}

	// Parse both before applying either so a bad field changes nothing.
	var mode models.Mode
	if req.Mode != nil {
		if mode, err = models.ParseMode(*req.Mode); err != nil {
			a.handleError(w, r, err)
			return
		}
	}
	var platform *models.Platform
	if req.Platform != nil {
		if platform, err = parseOptionalPlatform(req.Platform); err != nil {
			a.handleError(w, r, err)
			return
		}
	}

	if req.Mode != nil {
		if err := session.SetMode(mode); err != nil {
			a.handleError(w, r, err)
			return
		}
	}
	if req.Platform != nil {
		if err := session.SetPlatform(platform); err != nil {
			a.handleError(w, r, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, newSessionResponse(session))
}

func (a *api) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Delete(r.PathValue("id")); err != nil {
		a.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	session, err := a.sessions.Get(r.PathValue("id"))
	if err != nil {
		a.handleError(w, r, err)
		return
	}

	var turn service.Turn
	if !a.decode(w, r, &turn) {
		return
	}

	out := session.Submit(r.Context(), turn)
	status := http.StatusOK
	if out.Err != nil {
		status, _ = classify(out.Err)
	}
	respondJSON(w, status, newTurnResponse(session.ID, out))
}

type platformResponse struct {
	ID    models.Platform `json:"id"`
	Label string          `json:"label"`
}

func (a *api) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, lo.Map(models.Platforms(), func(p models.Platform, _ int) platformResponse {
		return platformResponse{ID: p, Label: p.Label()}
	}))
}

func (a *api) handleModes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.Modes())
}

// saveContentRequest saves either a session message or a payload held by a
// stateless client.
type saveContentRequest struct {
	SessionID string                    `json:"session_id"`
	MessageID string                    `json:"message_id"`
	Content   *models.StructuredContent `json:"content"`
}

func (a *api) handleSaveContent(w http.ResponseWriter, r *http.Request) {
	var req saveContentRequest
	if !a.decode(w, r, &req) {
		return
	}

	var (
		saved *models.SavedContent
		err   error
	)
	switch {
	case req.Content != nil:
		saved, err = a.library.SaveStructured(r.Context(), models.SavedContentInput{
			Content:   *req.Content,
			SessionID: req.SessionID,
			MessageID: req.MessageID,
		})
	case req.SessionID != "" && req.MessageID != "":
		saved, err = a.library.Save(r.Context(), req.SessionID, req.MessageID)
	default:
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error: "session_id and message_id, or content, are required",
			Code:  "invalid_request",
		})
		return
	}
	if err != nil {
		a.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, newContentResponse(*saved))
}

func (a *api) handleListContent(w http.ResponseWriter, r *http.Request) {
	var filter *models.Platform
	if raw := r.URL.Query().Get("platform"); raw != "" {
		p, err := models.ParsePlatform(raw)
		if err != nil {
			a.handleError(w, r, err)
			return
		}
		filter = &p
	}

	items, err := a.library.List(r.Context(), filter)
	if err != nil {
		a.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, lo.Map(items, func(c models.SavedContent, _ int) contentResponse {
		return newContentResponse(c)
	}))
}

func (a *api) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	if err := a.library.Delete(r.Context(), r.PathValue("id")); err != nil {
		a.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseOptionalPlatform treats nil and "" as no selection.
func parseOptionalPlatform(raw *string) (*models.Platform, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	p, err := models.ParsePlatform(*raw)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
