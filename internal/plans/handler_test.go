package plans

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"escape-planner/internal/llm"
	"escape-planner/internal/shared/server/middleware"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Session(false))
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doJSON(r http.Handler, method, path, session, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SessionHeader, session)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func TestSubmitAndExportOverHTTP(t *testing.T) {
	svc, _ := newTestService(&stubLLM{resp: llm.Response{Content: "Your plan"}}, &stubExporter{}, &stubNotifier{})
	r := newTestRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/plans", "sess-http",
		`{"jobTitle":"Nurse","monthlyIncome":"4000","skills":"Writing, Teaching","savings":"2000","goal":"Freelance writing"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp planResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID != "sess-http" || resp.State != StatePlanReady || resp.Plan == nil || resp.Plan.Text != "Your plan" {
		t.Fatalf("unexpected response %+v", resp)
	}

	w = doJSON(r, http.MethodGet, "/api/v1/plans/current", "sess-http", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for current, got %d", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/api/v1/plans/current/export", "sess-http", `{"email":"a@b.co","name":"Ann"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "Quit-My-Job-Escape-Plan.pdf") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if w.Header().Get("X-Notify-Status") != "dispatched" {
		t.Fatalf("expected dispatched notify status")
	}
}

func TestSubmitIncompleteListsFields(t *testing.T) {
	svc, _ := newTestService(&stubLLM{}, &stubExporter{}, nil)
	r := newTestRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/plans", "sess-x", `{"jobTitle":"Nurse"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var env errorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Code != "input_incomplete" {
		t.Fatalf("unexpected code %q", env.Error.Code)
	}
	missing, _ := env.Error.Details["missing"].([]any)
	if len(missing) != 4 {
		t.Fatalf("expected 4 missing fields, got %v", env.Error.Details)
	}
}

func TestSubmitGenerationFailureStatus(t *testing.T) {
	svc, _ := newTestService(&stubLLM{err: &llm.GenerationError{Kind: llm.UpstreamError, StatusCode: 500}}, &stubExporter{}, nil)
	r := newTestRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/plans", "sess-y",
		`{"jobTitle":"a","monthlyIncome":"b","skills":"c","savings":"d","goal":"e"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "upstream_error") {
		t.Fatalf("expected upstream_error code, got %s", w.Body.String())
	}
}

func TestExportRejectsBadEmail(t *testing.T) {
	svc, _ := newTestService(&stubLLM{resp: llm.Response{Content: "p"}}, &stubExporter{}, nil)
	r := newTestRouter(svc)
	doJSON(r, http.MethodPost, "/api/v1/plans", "sess-z", `{"jobTitle":"a","monthlyIncome":"b","skills":"c","savings":"d","goal":"e"}`)

	w := doJSON(r, http.MethodPost, "/api/v1/plans/current/export", "sess-z", `{"email":"not-an-email"}`)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "invalid_email") {
		t.Fatalf("expected invalid_email, got %d %s", w.Code, w.Body.String())
	}
}

func TestCurrentWithoutSession(t *testing.T) {
	svc, _ := newTestService(&stubLLM{}, &stubExporter{}, nil)
	r := newTestRouter(svc)
	w := doJSON(r, http.MethodGet, "/api/v1/plans/current", "fresh", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&llm.GenerationError{Kind: llm.NetworkFailure}, http.StatusGatewayTimeout, "network_failure"},
		{&llm.GenerationError{Kind: llm.MalformedResponse}, http.StatusBadGateway, "malformed_response"},
		{ErrGenerationDisabled, http.StatusServiceUnavailable, "generation_disabled"},
		{ErrPlanRequired, http.StatusConflict, "plan_required"},
		{&TransitionError{From: StateGenerating, To: StateAwaitingInput}, http.StatusConflict, "conflict"},
		{&ExportError{Kind: EncodingUnsupported}, http.StatusUnprocessableEntity, "encoding_unsupported"},
		{&ExportError{Kind: RenderFailed}, http.StatusInternalServerError, "render_failed"},
	}
	for _, tc := range cases {
		status, code, msg, _ := Classify(tc.err)
		if status != tc.status || code != tc.code || msg == "" {
			t.Fatalf("%v: got %d %s", tc.err, status, code)
		}
	}
}
