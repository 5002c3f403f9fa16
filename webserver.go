package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// WebServer exposes the simulations as a JSON API
type WebServer struct {
	config *Config
	addr   string
	logger *Logger
}

// NewWebServer creates a new web server instance. A nil config serves the
// embedded default.
func NewWebServer(config *Config, addr string, logger *Logger) *WebServer {
	return &WebServer{
		config: config,
		addr:   addr,
		logger: logger.orSilent(),
	}
}

// APISimulationRequest is the body accepted by every simulation endpoint.
// Zero fields fall back to the server's configuration.
type APISimulationRequest struct {
	Config     *Config `json:"config,omitempty"`
	Seed       uint64  `json:"seed,omitempty"`
	Runs       int     `json:"runs,omitempty"`
	Years      int     `json:"years,omitempty"`
	IncludeTax bool    `json:"include_tax,omitempty"` // export-pdf only
}

// APIResponse wraps every JSON result
type APIResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	RunID   string `json:"run_id,omitempty"`
	Seed    uint64 `json:"seed,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// Handler returns the API routes
func (ws *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", ws.handleIndex)
	mux.HandleFunc("/healthz", ws.handleHealth)
	mux.HandleFunc("/api/config", ws.handleGetConfig)
	mux.HandleFunc("/api/simulate", ws.handleSimulate)
	mux.HandleFunc("/api/simulate/tax", ws.handleSimulateTax)
	mux.HandleFunc("/api/sensitivity", ws.handleSensitivity)
	mux.HandleFunc("/api/capacity", ws.handleCapacity)
	mux.HandleFunc("/api/export-pdf", ws.handleExportPDF)

	return ws.logRequests(mux)
}

// logRequests logs every request with its duration
func (ws *WebServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		ws.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("Request")
	})
}

// Start listens on the configured address and serves until the listener fails
func (ws *WebServer) Start() error {
	listener, err := net.Listen("tcp", ws.addr)
	if err != nil {
		return err
	}

	ws.logger.Info().Str("addr", listener.Addr().String()).Msg("Starting web server")

	srv := &http.Server{
		Handler:           ws.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.Serve(listener)
}

func (ws *WebServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{
		"endpoints": {
			"GET /api/config",
			"POST /api/simulate",
			"POST /api/simulate/tax",
			"POST /api/sensitivity",
			"POST /api/capacity",
			"POST /api/export-pdf",
			"GET /healthz",
		},
	})
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleGetConfig returns the current configuration
func (ws *WebServer) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	config, err := ws.baseConfig()
	if err != nil {
		sendJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sendJSON(w, APIResponse{Success: true, Result: config})
}

func (ws *WebServer) handleSimulate(w http.ResponseWriter, r *http.Request) {
	ws.runJSON(w, r, func(ctx context.Context, config *Config, opts RunOptions) (any, error) {
		return RunLegacySimulation(ctx, config, opts)
	})
}

func (ws *WebServer) handleSimulateTax(w http.ResponseWriter, r *http.Request) {
	ws.runJSON(w, r, func(ctx context.Context, config *Config, opts RunOptions) (any, error) {
		return RunTaxSimulation(ctx, config, opts)
	})
}

func (ws *WebServer) handleSensitivity(w http.ResponseWriter, r *http.Request) {
	ws.runJSON(w, r, func(ctx context.Context, config *Config, opts RunOptions) (any, error) {
		return RunSensitivityAnalysis(ctx, config, opts)
	})
}

func (ws *WebServer) handleCapacity(w http.ResponseWriter, r *http.Request) {
	ws.runJSON(w, r, func(ctx context.Context, config *Config, opts RunOptions) (any, error) {
		return CalculateSpendingCapacity(ctx, config, opts)
	})
}

// handleExportPDF runs the legacy simulation (and the tax simulation when
// asked) and returns the report as a PDF download
func (ws *WebServer) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	req, ok := ws.decodeRequest(w, r)
	if !ok {
		return
	}
	config, opts, err := ws.buildRun(req)
	if err != nil {
		sendJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := RunLegacySimulation(r.Context(), config, opts)
	if err != nil {
		sendRunError(w, err)
		return
	}
	var tax *TaxSimulationResult
	if req.IncludeTax {
		if tax, err = RunTaxSimulation(r.Context(), config, opts); err != nil {
			sendRunError(w, err)
			return
		}
	}

	pdfBytes, err := GenerateLegacyPDFReport(config, result, tax)
	if err != nil {
		sendJSONError(w, http.StatusInternalServerError, "Failed to generate PDF: "+err.Error())
		return
	}

	filename := fmt.Sprintf("Legacy-Forecast-%s.pdf", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Run-ID", opts.RunID)
	w.Write(pdfBytes)
}

type runFunc func(ctx context.Context, config *Config, opts RunOptions) (any, error)

// runJSON decodes the request, runs fn under the request context and
// encodes its result
func (ws *WebServer) runJSON(w http.ResponseWriter, r *http.Request, fn runFunc) {
	req, ok := ws.decodeRequest(w, r)
	if !ok {
		return
	}
	config, opts, err := ws.buildRun(req)
	if err != nil {
		sendJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := fn(r.Context(), config, opts)
	if err != nil {
		ws.logger.Warn().Str("run_id", opts.RunID).Str("path", r.URL.Path).Err(err).Msg("Request failed")
		sendRunError(w, err)
		return
	}
	sendJSON(w, APIResponse{Success: true, RunID: opts.RunID, Seed: opts.Seed, Result: result})
}

func (ws *WebServer) decodeRequest(w http.ResponseWriter, r *http.Request) (*APISimulationRequest, bool) {
	if r.Method != http.MethodPost {
		sendJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return nil, false
	}
	// An empty body runs the server configuration as is
	var req APISimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		sendJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	return &req, true
}

func (ws *WebServer) baseConfig() (*Config, error) {
	if ws.config == nil {
		return LoadDefaultConfig()
	}
	return ws.config.Clone(), nil
}

// buildRun merges the request into the server configuration and fixes the
// seed and run ID
func (ws *WebServer) buildRun(req *APISimulationRequest) (*Config, RunOptions, error) {
	var config *Config
	if req.Config != nil {
		config = req.Config.Clone()
	} else {
		var err error
		if config, err = ws.baseConfig(); err != nil {
			return nil, RunOptions{}, err
		}
	}
	if req.Runs > 0 {
		config.Simulation.Runs = req.Runs
	}
	if req.Years > 0 {
		config.Simulation.Years = req.Years
	}

	seed := req.Seed
	if seed == 0 {
		seed = config.Simulation.Seed
	}
	if seed == 0 {
		seed = RandomSeed()
	}

	return config, RunOptions{
		Seed:    seed,
		Workers: config.Simulation.Workers,
		RunID:   uuid.NewString(),
		Logger:  ws.logger,
	}, nil
}

func sendJSON(w http.ResponseWriter, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// sendJSONError sends a JSON error response
func sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error:   message,
	})
}

// sendRunError maps engine errors to HTTP statuses
func sendRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidConfiguration):
		sendJSONError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		sendJSONError(w, http.StatusServiceUnavailable, err.Error())
	default:
		sendJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
