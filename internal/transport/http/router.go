package httptransport

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"miniapp-tma-backend/internal/metrics"
	"miniapp-tma-backend/internal/telegram"
)

// Dependencies holds everything the HTTP layer needs.
type Dependencies struct {
	Verifier       *telegram.Verifier
	Submissions    Submitter
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Log            *zap.Logger
	AllowedOrigins []string
}

func NewRouter(deps Dependencies) http.Handler {
	r := mux.NewRouter()
	r.Use(recordRoute)

	// Public routes
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	// Routes authenticated with Telegram init data
	auth := TelegramAuthMiddleware{Verifier: deps.Verifier, Metrics: deps.Metrics, Log: deps.Log}
	h := Handlers{Submissions: deps.Submissions, Log: deps.Log}

	r.Handle("/api/submit", auth.Wrap(http.HandlerFunc(h.HandleSubmit))).Methods(http.MethodPost)
	r.Handle("/api/me", auth.Wrap(http.HandlerFunc(h.HandleMe))).Methods(http.MethodGet)

	var handler http.Handler = CORS(deps.AllowedOrigins)(r)
	handler = Logging(deps.Log, deps.Metrics)(handler)
	return RequestID(deps.Log)(handler)
}
