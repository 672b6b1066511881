package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	mw "github.com/baggiolabs/baggio/internal/http/middlewares"
	"github.com/baggiolabs/baggio/internal/metrics"
)

func TestWithLogging_MetricsUseRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(mw.WithRequestID(), mw.WithLogging())
	r.Get("/magic/login/{token}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	const rawPath = "/magic/login/eyJhbGciOiJIUzUxMiJ9.abc.def"
	pattern := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/magic/login/{token}", "200")
	raw := metrics.HTTPRequests.WithLabelValues(http.MethodGet, rawPath, "200")
	before := testutil.ToFloat64(pattern)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, rawPath, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, quiero 200", rec.Code)
	}
	if got := testutil.ToFloat64(pattern) - before; got != 1 {
		t.Fatalf("serie con route pattern incrementó %v, quiero 1", got)
	}
	// El path crudo con el token nunca debe aparecer como label.
	if got := testutil.ToFloat64(raw); got != 0 {
		t.Fatalf("el path con token quedó como label de métrica (%v)", got)
	}
}

func TestWithLogging_UnmatchedMagicPathIsRedacted(t *testing.T) {
	// Sin ruta que matchee no hay route pattern: el label cae al path
	// redactado, nunca al token literal.
	r := chi.NewRouter()
	r.Use(mw.WithLogging())

	series := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/magic/login/{token}", "404")
	before := testutil.ToFloat64(series)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/magic/login/secreto", nil))

	if got := testutil.ToFloat64(series) - before; got != 1 {
		t.Fatalf("el 404 del magic link no cayó en el path redactado (delta %v)", got)
	}
}
