package metrics

import (
	"database/sql"
	"database/sql/driver"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(leadNotifyTotal.WithLabelValues("mailing_list", OutcomeFailed))
	IncNotify("mailing_list", OutcomeFailed)
	after := testutil.ToFloat64(leadNotifyTotal.WithLabelValues("mailing_list", OutcomeFailed))
	if after-before != 1 {
		t.Fatalf("expected counter to grow by 1, got %v -> %v", before, after)
	}

	beforeGen := testutil.ToFloat64(planGenerationTotal.WithLabelValues(OutcomeOK))
	ObserveGeneration(OutcomeOK, 1500*time.Millisecond)
	if got := testutil.ToFloat64(planGenerationTotal.WithLabelValues(OutcomeOK)); got-beforeGen != 1 {
		t.Fatalf("expected generation counter to grow by 1, got %v", got-beforeGen)
	}
}

func TestAddReplacedGlyphsIgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(exportReplacedGlyphs)
	AddReplacedGlyphs(0)
	AddReplacedGlyphs(-3)
	AddReplacedGlyphs(2)
	if got := testutil.ToFloat64(exportReplacedGlyphs); got-before != 2 {
		t.Fatalf("expected +2, got %v", got-before)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncExport(OutcomeOK)

	r := gin.New()
	r.GET("/metrics", Handler())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "plan_export_total") {
		t.Fatalf("expected plan_export_total in body")
	}
}

func TestRegisterDBReplacesPoolWithSameName(t *testing.T) {
	first, err := sql.Open("metricsdb", "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	second, _ := sql.Open("metricsdb", "")
	RegisterDB(first, "attempts_metrics_test")
	RegisterDB(second, "attempts_metrics_test")

	families, err := Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := 0
	for _, mf := range families {
		if mf.GetName() != "go_sql_max_open_connections" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "db_name" && l.GetValue() == "attempts_metrics_test" {
					found++
				}
			}
		}
	}
	if found != 1 {
		t.Fatalf("expected one series for the pool, got %d", found)
	}
}

func TestIncRateLimited(t *testing.T) {
	before := testutil.ToFloat64(rateLimitedTotal.WithLabelValues("GENERATE"))
	IncRateLimited("GENERATE")
	if got := testutil.ToFloat64(rateLimitedTotal.WithLabelValues("GENERATE")); got-before != 1 {
		t.Fatalf("expected +1, got %v", got-before)
	}
}

type metricsDriver struct{}

func (metricsDriver) Open(string) (driver.Conn, error) { return nil, driver.ErrBadConn }

func init() {
	sql.Register("metricsdb", metricsDriver{})
}
