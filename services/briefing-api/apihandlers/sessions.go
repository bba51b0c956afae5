package apihandlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	mw "github.com/arcflow/arcflow-backend/pkg/apihelpers/middlewares"
	"github.com/arcflow/arcflow-backend/pkg/briefing/drafts"
	"github.com/arcflow/arcflow-backend/pkg/briefing/engine"
	"github.com/arcflow/arcflow-backend/pkg/briefing/exporter"
	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
	jwthandling "github.com/arcflow/arcflow-backend/pkg/jwt-handling"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (h *HttpEndpoints) AddSessionAPI(rg *gin.RouterGroup) {
	sessionsGroup := rg.Group("/sessions")
	sessionsGroup.Use(mw.OfficeAuthMiddleware(h.tokenSignKey, h.allowedOfficeIDs, h.serviceAPIKeys))
	{
		sessionsGroup.POST("/", mw.RequirePayload(h.maxSchemaSize), h.startSession)
		sessionsGroup.GET("/:id", h.getSession)
		sessionsGroup.DELETE("/:id", h.discardSession)
		sessionsGroup.PUT("/:id/answers/:questionId", mw.RequirePayload(h.maxSchemaSize), h.setAnswer)
		sessionsGroup.DELETE("/:id/answers/:questionId", h.clearAnswer)
		sessionsGroup.GET("/:id/validation", h.validateSession)
		sessionsGroup.POST("/:id/submit", h.submitSession)
	}
}

type sessionView struct {
	Session  *drafts.Draft          `json:"session"`
	Visible  []types.VisibleSection `json:"visible"`
	Progress engine.Progress        `json:"progress"`
}

func newSessionView(draft *drafts.Draft, iv *engine.Interview) sessionView {
	return sessionView{
		Session:  draft,
		Visible:  iv.Visible(),
		Progress: iv.Progress(),
	}
}

func (h *HttpEndpoints) startSession(c *gin.Context) {
	token, _ := mw.GetOfficeClaims(c)

	var req struct {
		SchemaKey string        `json:"schemaKey"`
		Answers   types.Answers `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SchemaKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "schemaKey is required"})
		return
	}

	s, err := h.registry.Get(token.OfficeID, req.SchemaKey)
	if err != nil {
		h.respondSchemaError(c, token.OfficeID, req.SchemaKey, err)
		return
	}

	draft := drafts.NewDraft(token.OfficeID, s.Key, s.Version, token.Subject)
	iv := engine.NewInterview(s, nil)
	for qID, value := range req.Answers {
		if err := iv.Answer(qID, value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	draft.Answers = iv.Store().Snapshot()

	if err := h.drafts.Save(c.Request.Context(), draft); err != nil {
		slog.Error("failed to save draft", slog.String("officeID", token.OfficeID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}

	slog.Info("briefing session started", slog.String("officeID", token.OfficeID), slog.String("userID", token.Subject), slog.String("schemaKey", s.Key), slog.String("sessionID", draft.ID))
	c.JSON(http.StatusOK, newSessionView(draft, iv))
}

// draftAccessible: a draft belongs to the user who started it. Office admins
// may access every draft of their office.
func draftAccessible(token *jwthandling.OfficeUserClaims, draft *drafts.Draft) bool {
	return draft.CreatedBy == token.Subject || (!token.IsServiceUser && token.IsAdmin())
}

// loadDraft loads a draft of the requesting user. Drafts of other users are
// reported as not found. On failure the response is already written.
func (h *HttpEndpoints) loadDraft(c *gin.Context, token *jwthandling.OfficeUserClaims) (*drafts.Draft, bool) {
	draft, err := h.drafts.Load(c.Request.Context(), token.OfficeID, c.Param("id"))
	if err != nil {
		if errors.Is(err, drafts.ErrDraftNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return nil, false
		}
		slog.Error("failed to load draft", slog.String("officeID", token.OfficeID), slog.String("sessionID", c.Param("id")), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return nil, false
	}
	if !draftAccessible(token, draft) {
		slog.Warn("user tried to access a draft of another user", slog.String("officeID", token.OfficeID), slog.String("userID", token.Subject), slog.String("sessionID", draft.ID))
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return draft, true
}

// loadSession loads a draft with its interview. On failure the response is
// already written.
func (h *HttpEndpoints) loadSession(c *gin.Context, token *jwthandling.OfficeUserClaims) (*drafts.Draft, *engine.Interview, bool) {
	draft, ok := h.loadDraft(c, token)
	if !ok {
		return nil, nil, false
	}

	s, err := h.registry.Get(token.OfficeID, draft.SchemaKey)
	if err != nil {
		h.respondSchemaError(c, token.OfficeID, draft.SchemaKey, err)
		return nil, nil, false
	}
	if s.Version != draft.SchemaVersion {
		slog.Debug("draft continues on newer schema version", slog.String("sessionID", draft.ID), slog.String("from", draft.SchemaVersion), slog.String("to", s.Version))
		draft.SchemaVersion = s.Version
	}
	return draft, engine.NewInterview(s, draft.Answers), true
}

func (h *HttpEndpoints) getSession(c *gin.Context) {
	token, _ := mw.GetOfficeClaims(c)
	draft, iv, ok := h.loadSession(c, token)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSessionView(draft, iv))
}

func (h *HttpEndpoints) discardSession(c *gin.Context) {
	token, _ := mw.GetOfficeClaims(c)
	draft, ok := h.loadDraft(c, token)
	if !ok {
		return
	}
	if err := h.drafts.Delete(c.Request.Context(), token.OfficeID, draft.ID); err != nil {
		slog.Error("failed to delete draft", slog.String("officeID", token.OfficeID), slog.String("sessionID", c.Param("id")), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to discard session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session discarded"})
}

func (h *HttpEndpoints) setAnswer(c *gin.Context) {
	token, _ := mw.GetOfficeClaims(c)

	var req struct {
		Value *types.AnswerValue `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}

	draft, iv, ok := h.loadSession(c, token)
	if !ok {
		return
	}
	if err := iv.Answer(c.Param("questionId"), *req.Value); err != nil {
		h.respondAnswerError(c, err)
		return
	}
	h.saveSession(c, token, draft, iv)
}

func (h *HttpEndpoints) clearAnswer(c *gin.Context) {
	token, _ := mw.GetOfficeClaims(c)

	draft, iv, ok := h.loadSession(c, token)
	if !ok {
		return
	}
	if err := iv.Clear(c.Param("questionId")); err != nil {
		h.respondAnswerError(c, err)
		return
	}
	h.saveSession(c, token, draft, iv)
}

func (h *HttpEndpoints) respondAnswerError(c *gin.Context, err error) {
	if errors.Is(err, engine.ErrUnknownQuestion) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
}

func (h *HttpEndpoints) saveSession(c *gin.Context, token *jwthandling.OfficeUserClaims, draft *drafts.Draft, iv *engine.Interview) {
	draft.Answers = iv.Store().Snapshot()
	if err := h.drafts.Save(c.Request.Context(), draft); err != nil {
		slog.Error("failed to save draft", slog.String("officeID", token.OfficeID), slog.String("sessionID", draft.ID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save session"})
		return
	}
	c.JSON(http.StatusOK, newSessionView(draft, iv))
}

func (h *HttpEndpoints) validateSession(c *gin.Context) {
	token, _ := mw.GetOfficeClaims(c)
	_, iv, ok := h.loadSession(c, token)
	if !ok {
		return
	}
	issues := iv.Validate()
	c.JSON(http.StatusOK, gin.H{
		"valid":    len(issues) == 0,
		"issues":   issues,
		"progress": iv.Progress(),
	})
}

// submitSession finalizes the interview, stores the briefing with its export
// and removes the draft. Unresolved issues are answered with 422.
func (h *HttpEndpoints) submitSession(c *gin.Context) {
	token, _ := mw.GetOfficeClaims(c)

	var req struct {
		ProjectName string `json:"projectName"`
		ClientName  string `json:"clientName"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			slog.Error("failed to bind request", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	draft, iv, ok := h.loadSession(c, token)
	if !ok {
		return
	}

	answers, issues := iv.Finalize()
	if len(issues) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "briefing incomplete", "issues": issues})
		return
	}

	s := iv.Schema()
	records := exporter.Export(s, answers, h.classifier)
	briefing := types.Briefing{
		SchemaKey:     s.Key,
		SchemaVersion: s.Version,
		ProjectName:   strings.TrimSpace(req.ProjectName),
		ClientName:    strings.TrimSpace(req.ClientName),
		SubmittedBy:   token.Subject,
		SubmittedAt:   time.Now().Unix(),
		DraftID:       draft.ID,
		Answers:       answers,
		Records:       records,
	}
	if briefing.ProjectName == "" {
		briefing.ProjectName = exporter.DefaultProjectName(records)
	}

	id, err := h.briefingDB.SaveBriefing(token.OfficeID, briefing)
	if err != nil {
		slog.Error("failed to save briefing", slog.String("officeID", token.OfficeID), slog.String("sessionID", draft.ID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit briefing"})
		return
	}
	briefing.ID, _ = primitive.ObjectIDFromHex(id)

	if err := h.drafts.Delete(c.Request.Context(), token.OfficeID, draft.ID); err != nil {
		slog.Warn("failed to delete submitted draft", slog.String("officeID", token.OfficeID), slog.String("sessionID", draft.ID), slog.String("error", err.Error()))
	}

	if h.notifier != nil {
		if err := h.notifier.BriefingSubmitted(token.OfficeID, s.Name, briefing); err != nil {
			slog.Error("failed to send briefing notification", slog.String("officeID", token.OfficeID), slog.String("briefingID", id), slog.String("error", err.Error()))
		}
	}

	slog.Info("briefing submitted", slog.String("officeID", token.OfficeID), slog.String("userID", token.Subject), slog.String("schemaKey", s.Key), slog.String("briefingID", id), slog.Int("records", len(records)))
	c.JSON(http.StatusOK, gin.H{
		"briefing": briefing,
		"summary":  exporter.Summarize(records),
	})
}
