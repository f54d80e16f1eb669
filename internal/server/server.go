package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"ioccollector/internal/common"
	"ioccollector/internal/geo"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server wraps HTTP and gRPC servers
type Server struct {
	cfg     *Config
	index   atomic.Pointer[Index]
	router  *mux.Router
	health  *health.Server
	grpcSrv *grpc.Server
}

func New(idx *Index, cfg *Config) *Server {
	s := &Server{cfg: cfg, router: mux.NewRouter(), health: health.NewServer(), grpcSrv: grpc.NewServer()}
	healthpb.RegisterHealthServer(s.grpcSrv, s.health)
	reflection.Register(s.grpcSrv)
	// URL indicators contain "//" and must not be redirected to a cleaned path.
	s.router.SkipClean(true)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	if idx != nil {
		s.SetIndex(idx)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/summary", s.handleSummary).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/indicators", s.handleList).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/indicators/{indicator:.+}", s.handleGet).Methods(http.MethodGet)
}

func (s *Server) Router() http.Handler { return s.router }

// SetIndex swaps the served dataset and marks the gRPC health service as serving.
func (s *Server) SetIndex(idx *Index) {
	s.index.Store(idx)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
}

// Reload re-reads the geo-enriched dataset from path.
func (s *Server) Reload(path string) error {
	records, err := geo.ReadCSV(path)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	s.SetIndex(NewIndex(records))
	slog.Info("dataset loaded", "path", path, "records", len(records))
	return nil
}

// StartMetrics binds addr and serves /metrics in the background. It returns once the
// listener is bound.
func (s *Server) StartMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.Serve(ln, metricsMux); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "err", err)
		}
	}()
	return nil
}

// StartGRPC serves the standard health service and reflection on addr until Stop is called.
func (s *Server) StartGRPC(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeGRPC(ln)
}

// ServeGRPC serves gRPC on an existing listener.
func (s *Server) ServeGRPC(ln net.Listener) error {
	return s.grpcSrv.Serve(ln)
}

// Stop marks the service as not serving and stops the gRPC server.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcSrv.GracefulStop()
}

func (s *Server) current(w http.ResponseWriter) *Index {
	idx := s.index.Load()
	if idx == nil {
		writeError(w, http.StatusServiceUnavailable, "dataset not loaded")
	}
	return idx
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if idx := s.current(w); idx != nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "records": idx.Len()})
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if idx := s.current(w); idx != nil {
		writeJSON(w, http.StatusOK, idx.Summary())
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	idx := s.current(w)
	if idx == nil {
		return
	}
	q := r.URL.Query()
	var f Filter
	if v := q.Get("type"); v != "" {
		t, ok := common.ParseIndicatorType(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown type "+strconv.Quote(v))
			return
		}
		f.Type = t
	}
	if v := q.Get("risk"); v != "" {
		f.Risk = common.RiskLevel(strings.ToUpper(v))
		if f.Risk != common.RiskHigh && f.Risk != common.RiskMedium && f.Risk != common.RiskLow {
			writeError(w, http.StatusBadRequest, "unknown risk "+strconv.Quote(v))
			return
		}
	}
	f.Category = q.Get("category")
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		f.Limit = n
	}
	records := idx.List(f)
	writeJSON(w, http.StatusOK, map[string]any{"count": len(records), "indicators": records})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	idx := s.current(w)
	if idx == nil {
		return
	}
	indicator := mux.Vars(r)["indicator"]
	records := idx.Lookup(indicator)
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "indicator not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"indicator": indicator, "records": records})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
