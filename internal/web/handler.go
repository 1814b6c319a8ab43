package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"escape-planner/internal/plans"
	"escape-planner/internal/shared/server/middleware"
	"escape-planner/internal/shared/server/respond"
	"escape-planner/internal/shared/telemetry"
)

const formUnreadable = "We couldn't read that form. Please try again."

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("page.html").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templateFS, "templates/page.html"),
)

// Links are the marketing destinations shown under a plan.
type Links struct {
	UpgradeURL    string
	NewsletterURL string
}

// Handler serves the single-page form.
type Handler struct {
	Svc   *plans.Service
	Links Links
}

func NewHandler(svc *plans.Service, links Links) *Handler {
	return &Handler{Svc: svc, Links: links}
}

// RegisterRoutes attaches the page routes at the engine root.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.show)
	r.POST("/", h.submit)
	r.POST("/export", h.export)
}

type pageData struct {
	Form          plans.Form
	Contact       plans.ContactInput
	Plan          *plans.GeneratedPlan
	Error         string
	Missing       []string
	UpgradeURL    string
	NewsletterURL string
}

func (h *Handler) show(c *gin.Context) {
	data := h.page()
	sess, err := h.Svc.Current(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil && !errors.Is(err, plans.ErrSessionNotFound) {
		h.fail(c, data, err)
		return
	}
	h.fill(&data, sess)
	h.render(c, http.StatusOK, data)
}

func (h *Handler) submit(c *gin.Context) {
	var form plans.Form
	if err := c.ShouldBind(&form); err != nil {
		data := h.page()
		data.Error = formUnreadable
		h.render(c, http.StatusBadRequest, data)
		return
	}
	sess, err := h.Svc.Submit(plans.RequestContext(c), middleware.SessionIDFromContext(c), form)
	plans.Annotate(c, sess)

	data := h.page()
	data.Form = form
	if err != nil {
		h.fail(c, data, err)
		return
	}
	data.Plan = sess.Plan
	h.render(c, http.StatusOK, data)
}

func (h *Handler) export(c *gin.Context) {
	var in plans.ContactInput
	if err := c.ShouldBind(&in); err != nil {
		data := h.page()
		if sess, getErr := h.Svc.Current(c.Request.Context(), middleware.SessionIDFromContext(c)); getErr == nil {
			h.fill(&data, sess)
		}
		data.Error = formUnreadable
		h.render(c, http.StatusBadRequest, data)
		return
	}
	out, err := h.Svc.Export(plans.RequestContext(c), middleware.SessionIDFromContext(c), in)
	plans.Annotate(c, out.Session)
	if err == nil {
		plans.WriteDocument(c, out)
		return
	}

	data := h.page()
	data.Contact = in
	sess, getErr := h.Svc.Current(c.Request.Context(), middleware.SessionIDFromContext(c))
	if getErr == nil {
		h.fill(&data, sess)
	}
	h.fail(c, data, err)
}

func (h *Handler) page() pageData {
	return pageData{UpgradeURL: h.Links.UpgradeURL, NewsletterURL: h.Links.NewsletterURL}
}

// fill restores the last submission so a reload shows the same page.
func (h *Handler) fill(data *pageData, sess plans.Session) {
	if sess.Input != nil {
		data.Form = plans.Form(*sess.Input)
	}
	if sess.HasPlan() && sess.State != plans.StateGenerationFailed {
		data.Plan = sess.Plan
	}
}

func (h *Handler) fail(c *gin.Context, data pageData, err error) {
	status, code, message, _ := plans.Classify(err)
	var inputErr *plans.InputError
	if errors.As(err, &inputErr) {
		data.Missing = inputErr.Missing
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("web.error", map[string]any{
			"code":       code,
			"error":      err.Error(),
			"request_id": middleware.RequestIDFromContext(c),
			"session_id": middleware.SessionIDFromContext(c),
		})
	}
	data.Error = message
	h.render(c, status, data)
}

func (h *Handler) render(c *gin.Context, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		respond.Error(c, http.StatusInternalServerError, "render_failed", "could not render page", nil)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
