package server

import (
	"encoding/json"
	"log"
	"net/http"

	resumescanErrors "resumescan/internal/errors"
)

// healthHandler reports pipeline readiness. A missing lemmatizer model
// degrades the service because keyword matching cannot run without it.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "resumescan",
		"version": s.Version,
	}

	healthy := true
	if s.Deps.Lemmatizer != nil {
		loaded := s.Deps.Lemmatizer.Loaded()
		response["lemmatizer"] = map[string]any{"loaded": loaded}
		if !loaded {
			healthy = false
		}
	}

	if s.Deps.Summaries != nil {
		response["summarizer"] = s.Deps.Summaries.Stats()
	}

	rules := map[string]any{}
	if s.Deps.Analyzer != nil {
		rules["version"] = s.Deps.Analyzer.RulesVersion()
	}
	if s.Deps.RulesWatcher != nil {
		rules["watcher_running"] = s.Deps.RulesWatcher.IsRunning()
	}
	response["rules"] = rules

	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "resumescan",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"auth_enabled":           len(s.APIKeys) > 0,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"window":           s.RateLimit.Window.String(),
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	if s.Deps.Analyzer != nil {
		response["rules_version"] = s.Deps.Analyzer.RulesVersion()
	}
	if s.Deps.Summaries != nil {
		response["summarizer"] = s.Deps.Summaries.Stats()
	}

	writeJSON(w, http.StatusOK, response)
}

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
	})
}

// writeAppErrorResponse maps a pipeline error to the user-facing message and
// its machine-readable code.
func writeAppErrorResponse(w http.ResponseWriter, err error, statusCode int) {
	response := ErrorResponse{
		Error:   "Analysis failed",
		Message: resumescanErrors.UserMessage(err),
	}
	var appErr *resumescanErrors.AppError
	if resumescanErrors.As(err, &appErr) {
		response.Code = appErr.Code
	}
	writeJSON(w, statusCode, response)
}
