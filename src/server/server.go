// Package server implements the chat endpoint: method routing, request
// validation, the per-request orchestration pipeline and error mapping.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	jsonschema "github.com/swaggest/jsonschema-go"

	"github.com/sinema-chat/sinema/src/chatapi"
	"github.com/sinema-chat/sinema/src/config"
	"github.com/sinema-chat/sinema/src/memory"
)

var allowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}

// Server handles the single chat endpoint.
type Server struct {
	cfg       *config.Config
	store     memory.Store
	chat      chatapi.ChatClient
	logger    *slog.Logger
	startedAt time.Time
	contract  json.RawMessage
}

// NewServer wires the orchestrator with its collaborators. chat is an
// interface so tests can inject an upstream double.
func NewServer(cfg *config.Config, store memory.Store, chat chatapi.ChatClient, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:       cfg,
		store:     store,
		chat:      chat,
		logger:    logger.With("component", "server"),
		startedAt: time.Now(),
		contract:  reflectContract(logger),
	}
}

// Handler returns the HTTP handler with logging middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.route)
	return withRequestLogging(s.logger, mux)
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	applyCORS(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		s.handleStatus(w, r)
	case http.MethodPost:
		s.handleChat(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{
			Error:   "method not allowed",
			Allowed: allowedMethods,
		})
	}
}

// applyCORS sets the permissive CORS headers carried by every response.
func applyCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

type statusResponse struct {
	Service string        `json:"service"`
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Process *processStats `json:"process,omitempty"`
	Usage   statusUsage   `json:"usage"`
	Memory  statusMemory  `json:"memory"`
}

type processStats struct {
	PID      int    `json:"pid"`
	Hostname string `json:"hostname"`
	RSSBytes uint64 `json:"rssBytes"`
}

type statusUsage struct {
	Method      string          `json:"method"`
	ContentType string          `json:"contentType"`
	Schema      json.RawMessage `json:"schema,omitempty"`
}

type statusMemory struct {
	Driver string `json:"driver"`
}

// handleStatus describes the service and the POST contract. No side effects.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		Service: "sinema",
		Status:  "ok",
		Uptime:  time.Since(s.startedAt).Round(time.Second).String(),
		Process: collectProcessStats(),
		Usage: statusUsage{
			Method:      http.MethodPost,
			ContentType: "application/json",
			Schema:      s.contract,
		},
		Memory: statusMemory{Driver: s.cfg.Memory.Driver},
	}
	writeJSON(w, http.StatusOK, resp)
}

func collectProcessStats() *processStats {
	stats := &processStats{PID: os.Getpid()}
	if host, err := os.Hostname(); err == nil {
		stats.Hostname = host
	}
	proc, err := process.NewProcess(int32(stats.PID))
	if err != nil {
		return stats
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		stats.RSSBytes = mem.RSS
	}
	return stats
}

// reflectContract builds the JSON Schema of the POST body once at startup.
func reflectContract(logger *slog.Logger) json.RawMessage {
	var reflector jsonschema.Reflector
	schema, err := reflector.Reflect(ChatRequest{})
	if err != nil {
		logger.Warn("failed to reflect request schema", "error", err)
		return nil
	}
	b, err := json.Marshal(schema)
	if err != nil {
		logger.Warn("failed to marshal request schema", "error", err)
		return nil
	}
	return b
}
