// Command server is a single-endpoint HTTP demonstration of the
// accessibility analysis job boundary: POST a bounding box plus OSM
// element and report payloads, get back the result payload immediately
// (the job runs synchronously within the request); GET the job by ID
// later to re-fetch its record and result from the store.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/accessmap/aae/internal/cache"
	"github.com/accessmap/aae/internal/config"
	"github.com/accessmap/aae/internal/engine"
	"github.com/accessmap/aae/internal/graphexport"
	"github.com/accessmap/aae/internal/httpmw"
	"github.com/accessmap/aae/internal/jobrunner"
	"github.com/accessmap/aae/internal/store"
	"github.com/accessmap/aae/pkg/models"
)

const maxBodyBytes = 10 * 1024 * 1024

// server holds the dependencies the job endpoint needs.
type server struct {
	jobs        *store.JobStore
	cache       cache.ResultCache
	runner      *jobrunner.Pool
	exporter    *graphexport.Exporter
	stageMillis metric.Float64Histogram
	auth        *httpmw.TokenAuth
	jobLimiter  *httpmw.ExpensiveOperationLimiter
	router      chi.Router
}

// newServer wires exporter in only when non-nil; graph mirroring is an
// optional side channel, not a hard dependency of the job endpoint. The
// stage-duration histogram records against whatever MeterProvider the
// process has configured globally; with none configured it's a no-op.
// cfg.RequireAuth and cfg.JobCooldownSeconds are fixed at startup, since
// rotating the auth token or the cooldown window mid-process would be
// surprising; the per-job tunable radii, by contrast, are re-read off
// config.Get() on every request, so a settings-file reload (see
// WatchSettings in main) takes effect on the next job without a
// restart.
func newServer(js *store.JobStore, rc cache.ResultCache, exporter *graphexport.Exporter, cfg *config.Config) *server {
	hist, err := otel.Meter("github.com/accessmap/aae/cmd/server").
		Float64Histogram("aae.stage.duration_ms")
	if err != nil {
		log.Warn().Err(err).Msg("stage duration histogram unavailable")
	}

	auth, err := httpmw.NewTokenAuth(cfg.RequireAuth)
	if err != nil {
		log.Fatal().Err(err).Msg("generate auth token")
	}
	if auth.IsEnabled() {
		log.Info().Str("auth_token", auth.Token()).Msg("token auth enabled for /v1/jobs")
	}

	s := &server{
		jobs:        js,
		cache:       rc,
		runner:      jobrunner.NewPool(4),
		exporter:    exporter,
		stageMillis: hist,
		auth:        auth,
		jobLimiter:  httpmw.NewExpensiveOperationLimiter(cfg.JobCooldownSeconds),
		router:      chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *server) setupMiddleware() {
	s.router.Use(httpmw.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RealIP)
	s.router.Use(httpmw.SecurityHeaders)
	s.router.Use(httpmw.MaxBodySize(maxBodyBytes))
	s.router.Use(httpmw.RequireJSONContentType)
	s.router.Use(middleware.Compress(5))
	s.router.Use(s.auth.Middleware)

	limiter := httpmw.NewPerClientRateLimiter(10.0, 20)
	s.router.Use(httpmw.PerClientRateLimitMiddleware(limiter))
}

func (s *server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Post("/v1/jobs", s.handleCreateJob)
	s.router.Get("/v1/jobs/{id}", s.handleGetJob)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// jobRequest is the POST /v1/jobs body shape.
type jobRequest struct {
	BoundingBox models.BoundingBox
	Elements    []models.Element
	POIs        []models.POI
	Reports     []models.AggregatedReport
	AnchorPOIID string
}

func (s *server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if cached, ok := s.cache.Get(cacheKey(req.BoundingBox)); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	// Only a cache miss reaches the cooldown gate: re-requesting a bbox
	// that's already cached never touches the pipeline, so it shouldn't
	// spend the cooldown window either.
	if !s.jobLimiter.CanRun() {
		http.Error(w, "too many analysis runs, slow down", http.StatusTooManyRequests)
		return
	}

	cfg := config.Get()
	in := engine.Input{
		BoundingBox: req.BoundingBox,
		Elements:    req.Elements,
		POIs:        req.POIs,
		Reports:     req.Reports,
		AnchorPOIID: req.AnchorPOIID,
		HasAnchor:   req.AnchorPOIID != "",

		NodeIndexCellDeg:    cfg.NodeIndexCellDeg,
		EdgeIndexCellDeg:    cfg.EdgeIndexCellDeg,
		ReportIndexCellDeg:  cfg.ReportIndexCellDeg,
		POISnapRadiusM:      cfg.POISnapRadiusM,
		AnchorSnapRadiusM:   cfg.AnchorSnapRadiusM,
		ReportFusionRadiusM: cfg.ReportFusionRadiusM,
		ReportBonusRadiusM:  cfg.ReportBonusRadiusM,
		MaxRankedCandidates: cfg.MaxRankedCandidates,
	}

	// jobID is a stable persisted identity, independent of the HTTP
	// request ID used for tracing — a retried request gets a new request
	// ID but (if the client resubmits the same job) should still land on
	// its own job record. requestID correlates the two in logs.
	jobID := uuid.NewString()
	requestID := httpmw.GetRequestID(r.Context())
	ctx := r.Context()

	if err := s.jobs.CreateJob(ctx, models.JobRecord{
		ID:          jobID,
		Status:      models.JobStatusQueued,
		BoundingBox: req.BoundingBox,
		CreatedAt:   time.Now(),
	}); err != nil {
		log.Error().Err(err).Str("job_id", jobID).Str("request_id", requestID).Msg("create job record failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	_ = s.jobs.UpdateJobStatus(ctx, jobID, models.JobStatusRunning, "", "")
	log.Info().Str("job_id", jobID).Str("request_id", requestID).Msg("job running")

	var edges []models.Edge
	hooks := engine.Hooks{
		OnStageComplete: func(stage string, d time.Duration) {
			if s.stageMillis == nil {
				return
			}
			s.stageMillis.Record(ctx, float64(d.Microseconds())/1000,
				metric.WithAttributes(attribute.String("stage", stage)))
		},
	}
	if s.exporter != nil {
		hooks.OnEdgesReady = func(e []models.Edge) { edges = e }
	}

	results := s.runner.Run(r.Context(), []jobrunner.Job{{ID: jobID, Input: in, Hooks: hooks}})
	result := results[0]

	if result.Err != nil {
		_ = s.jobs.UpdateJobStatus(ctx, jobID, models.JobStatusError, result.Err.Kind, result.Err.Message)
		status := http.StatusInternalServerError
		switch result.Err.Kind {
		case "too_large", "invalid_input":
			status = http.StatusBadRequest
		}
		http.Error(w, result.Err.Message, status)
		return
	}

	if err := s.jobs.SaveResult(ctx, jobID, result.Payload); err != nil {
		log.Error().Err(err).Str("job_id", jobID).Str("request_id", requestID).Msg("save result failed")
	}
	_ = s.jobs.UpdateJobStatus(ctx, jobID, models.JobStatusDone, "", "")

	if s.exporter != nil {
		go func() {
			if err := s.exporter.Export(jobID, edges, result.Payload.Rankings); err != nil {
				log.Error().Err(err).Str("job_id", jobID).Msg("graph export failed")
			}
		}()
	}

	s.cache.Set(cacheKey(req.BoundingBox), result.Payload)
	writeJSON(w, http.StatusOK, result.Payload)
}

// jobResponse is the GET /v1/jobs/{id} body shape: the job record plus
// its result payload, once the job has finished.
type jobResponse struct {
	models.JobRecord
	Result *models.AnalysisResultPayload `json:",omitempty"`
}

func (s *server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := s.jobs.GetJob(r.Context(), id)
	if err != nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	resp := jobResponse{JobRecord: job}
	if job.Status == models.JobStatusDone {
		if payload, err := s.jobs.GetResult(r.Context(), id); err == nil {
			resp.Result = payload
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func cacheKey(b models.BoundingBox) string {
	return fmt.Sprintf("%f,%f,%f,%f", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := config.EnsureAll(); err != nil {
		log.Fatal().Err(err).Msg("ensure data dir")
	}
	cfg := config.Get()

	st, err := store.NewStore(store.Config{SQLitePath: cfg.DBPath})
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()

	jobs := store.NewJobStore(st)
	resultCache := cache.NewLRU(256)

	var exporter *graphexport.Exporter
	if cfg.GraphHost != "" {
		exporter, err = graphexport.NewExporter(cfg.GraphHost, cfg.GraphPort)
		if err != nil {
			log.Warn().Err(err).Msg("graph export disabled: connect failed")
			exporter = nil
		}
	}

	srv := newServer(jobs, resultCache, exporter, cfg)

	// WatchSettings keeps the global config current as the settings file
	// on disk changes, so a live deployment can widen a snap radius
	// without a restart; handleCreateJob re-reads config.Get() per
	// request and picks the change up on the next job. GraphHost is read
	// once above, so changing it takes effect only after a restart.
	stopWatch, err := config.WatchSettings(func(updated *config.Config) {
		log.Info().
			Float64("poi_snap_radius_m", updated.POISnapRadiusM).
			Int("max_ranked_candidates", updated.MaxRankedCandidates).
			Msg("settings reloaded")
	})
	if err != nil {
		log.Warn().Err(err).Msg("settings hot-reload disabled")
	} else {
		defer stopWatch()
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerPort),
		Handler:           srv.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", httpSrv.Addr).Msg("server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
}
