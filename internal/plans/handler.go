package plans

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"escape-planner/internal/llm"
	"escape-planner/internal/notify"
	"escape-planner/internal/shared/server/middleware"
	"escape-planner/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the plans service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches plan routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/plans", h.submit)
	rg.GET("/plans/current", h.current)
	rg.POST("/plans/current/export", h.export)
}

type planResponse struct {
	SessionID    string         `json:"sessionId"`
	SubmissionID string         `json:"submissionId,omitempty"`
	State        State          `json:"state"`
	Plan         *GeneratedPlan `json:"plan,omitempty"`
	Notify       *NotifySummary `json:"notify,omitempty"`
}

func toResponse(sess Session) planResponse {
	return planResponse{
		SessionID:    sess.ID,
		SubmissionID: sess.SubmissionID,
		State:        sess.State,
		Plan:         sess.Plan,
		Notify:       sess.Notify,
	}
}

func (h *Handler) submit(c *gin.Context) {
	var form Form
	if err := c.ShouldBind(&form); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	sess, err := h.Svc.Submit(RequestContext(c), middleware.SessionIDFromContext(c), form)
	Annotate(c, sess)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(sess))
}

func (h *Handler) current(c *gin.Context) {
	sess, err := h.Svc.Current(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no plan for this session yet", nil)
			return
		}
		WriteError(c, err)
		return
	}
	Annotate(c, sess)
	respond.JSON(c, http.StatusOK, toResponse(sess))
}

func (h *Handler) export(c *gin.Context) {
	var in ContactInput
	if err := c.ShouldBind(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	out, err := h.Svc.Export(RequestContext(c), middleware.SessionIDFromContext(c), in)
	Annotate(c, out.Session)
	if err != nil {
		WriteError(c, err)
		return
	}
	WriteDocument(c, out)
}

// WriteDocument sends the exported document as a download.
func WriteDocument(c *gin.Context, out ExportOutcome) {
	doc := out.Document
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Header("X-Document-Pages", strconv.Itoa(doc.Pages))
	if out.NotifyDispatched {
		c.Header("X-Notify-Status", "dispatched")
	} else {
		c.Header("X-Notify-Status", "disabled")
	}
	c.Data(http.StatusOK, doc.MimeType, doc.Bytes)
}

// WriteError maps pipeline errors onto the JSON error envelope.
func WriteError(c *gin.Context, err error) {
	status, code, message, details := Classify(err)
	respond.Error(c, status, code, message, details)
}

// Classify maps a pipeline error to an HTTP status, error code and user-facing message.
func Classify(err error) (int, string, string, any) {
	var inputErr *InputError
	var exportErr *ExportError
	var genErr *llm.GenerationError
	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, "input_incomplete", "Please fill in every field to get your plan.", gin.H{"missing": inputErr.Missing}
	case errors.Is(err, ErrInputIncomplete):
		return http.StatusBadRequest, "input_incomplete", "Please fill in every field to get your plan.", nil
	case errors.Is(err, notify.ErrInvalidContact):
		return http.StatusBadRequest, "invalid_email", "Please enter a valid email address.", nil
	case errors.As(err, &genErr):
		status := http.StatusBadGateway
		if genErr.Kind == llm.NetworkFailure {
			status = http.StatusGatewayTimeout
		}
		return status, string(genErr.Kind), llm.UserMessage(genErr.Kind), nil
	case errors.Is(err, ErrGenerationDisabled):
		return http.StatusServiceUnavailable, "generation_disabled", "Plan generation is not available right now.", nil
	case errors.Is(err, ErrPlanRequired):
		return http.StatusConflict, "plan_required", "Generate your plan before downloading it.", nil
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict, "conflict", "Your previous request is still running. Please wait a moment.", nil
	case errors.As(err, &exportErr):
		if exportErr.Kind == EncodingUnsupported {
			return http.StatusUnprocessableEntity, string(exportErr.Kind), "Your plan contains characters we can't put in a PDF yet.", nil
		}
		return http.StatusInternalServerError, string(exportErr.Kind), "We couldn't build your PDF. Please try again.", nil
	default:
		return http.StatusInternalServerError, "internal_error", "Unexpected server error", nil
	}
}

// Annotate tags the request log and response with the session's submission and state.
func Annotate(c *gin.Context, sess Session) {
	respond.Annotate(c, sess.SubmissionID, string(sess.State))
}
