package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"resumescan/internal/analyzer"
	"resumescan/internal/config"
	resumescanErrors "resumescan/internal/errors"
	"resumescan/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	report *types.Report
	err    error

	calls       int
	lastPath    string
	lastJD      string
	fileExisted bool
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req analyzer.Request) (*types.Report, error) {
	f.calls++
	f.lastPath = req.Path
	f.lastJD = req.JobDescription
	_, statErr := os.Stat(req.Path)
	f.fileExisted = statErr == nil
	return f.report, f.err
}

func (f *fakeAnalyzer) RulesVersion() string { return "test-rules" }

type fakeLemmatizer struct{ loaded bool }

func (f fakeLemmatizer) Loaded() bool { return f.loaded }

type fakeWatcher struct{}

func (fakeWatcher) IsRunning() bool { return true }

func newTestServer(t *testing.T, fa *fakeAnalyzer, mutate func(*ServerConfig)) *Server {
	t.Helper()
	cfg := ServerConfig{
		Version:        "test",
		MaxRequestSize: 1 << 20,
		UploadDir:      t.TempDir(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	srv := NewServer(nil, cfg, Dependencies{
		Analyzer:     fa,
		Lemmatizer:   fakeLemmatizer{loaded: true},
		RulesWatcher: fakeWatcher{},
	}, nil, nil)
	if srv.RateLimiter != nil {
		t.Cleanup(srv.RateLimiter.Close)
	}
	return srv
}

func multipartRequest(t *testing.T, filename string, content []byte, jd string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("resume", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	if jd != "" {
		require.NoError(t, mw.WriteField("job_description", jd))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.RemoteAddr = "192.0.2.10:41000"
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAnalyzeSuccess(t *testing.T) {
	fa := &fakeAnalyzer{report: &types.Report{OverallScore: 82, Grade: "B", RulesVersion: "test-rules"}}
	srv := newTestServer(t, fa, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, multipartRequest(t, "Jane Doe.pdf", []byte("%PDF-1.4"), "Go developer"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var report types.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 82, report.OverallScore)
	assert.Equal(t, "B", report.Grade)

	assert.Equal(t, 1, fa.calls)
	assert.Equal(t, "Go developer", fa.lastJD)
	assert.True(t, fa.fileExisted, "upload must exist while analyzing")
	assert.Equal(t, ".pdf", filepath.Ext(fa.lastPath))
	_, err := os.Stat(fa.lastPath)
	assert.True(t, os.IsNotExist(err), "upload must be removed afterwards")
}

func TestAnalyzeRejections(t *testing.T) {
	tests := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		mutate   func(*ServerConfig)
		wantCode int
	}{
		{
			name: "wrong method",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodGet, "/analyze", nil)
			},
			wantCode: http.StatusMethodNotAllowed,
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString(`{"resume":"x"}`))
				r.Header.Set("Content-Type", "application/json")
				return r
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "missing file",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "", nil, "only a job description")
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unsupported extension",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "resume.txt", []byte("plain text"), "")
			},
			wantCode: http.StatusUnsupportedMediaType,
		},
		{
			name: "file over limit",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "resume.docx", bytes.Repeat([]byte("a"), 200), "")
			},
			mutate:   func(c *ServerConfig) { c.MaxRequestSize = 100 },
			wantCode: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := &fakeAnalyzer{report: &types.Report{}}
			srv := newTestServer(t, fa, tt.mutate)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, tt.req(t))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Zero(t, fa.calls)
			assert.NotEmpty(t, decodeError(t, rec).Error)
		})
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
		wantErrCode string
	}{
		{
			name:        "extraction failure",
			err:         resumescanErrors.NewExtractionError(resumescanErrors.ErrCodeExtractionFailed, "corrupt xref table", nil),
			wantCode:    http.StatusUnprocessableEntity,
			wantMessage: "Failed to extract text. File may be corrupted or an unsupported format.",
			wantErrCode: resumescanErrors.ErrCodeExtractionFailed,
		},
		{
			name:        "empty text",
			err:         resumescanErrors.NewExtractionError(resumescanErrors.ErrCodeEmptyExtractedText, "no text", nil),
			wantCode:    http.StatusUnprocessableEntity,
			wantMessage: "Failed to extract text. File may be corrupted or an unsupported format.",
			wantErrCode: resumescanErrors.ErrCodeEmptyExtractedText,
		},
		{
			name:        "ocr engine missing",
			err:         resumescanErrors.NewExtractionError(resumescanErrors.ErrCodeOCREngineMissing, "tesseract not found", nil),
			wantCode:    http.StatusServiceUnavailable,
			wantMessage: "Tesseract OCR is not installed.",
			wantErrCode: resumescanErrors.ErrCodeOCREngineMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := &fakeAnalyzer{err: tt.err}
			srv := newTestServer(t, fa, nil)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, multipartRequest(t, "resume.pdf", []byte("%PDF"), ""))

			assert.Equal(t, tt.wantCode, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Equal(t, tt.wantErrCode, resp.Code)

			_, err := os.Stat(fa.lastPath)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	fa := &fakeAnalyzer{report: &types.Report{Grade: "C"}}
	srv := newTestServer(t, fa, func(c *ServerConfig) {
		c.APIKeys = []string{"secret-key-123"}
	})
	handler := srv.Handler()

	t.Run("missing key", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, multipartRequest(t, "resume.pdf", []byte("x"), ""))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Missing API key", decodeError(t, rec).Error)
	})

	t.Run("wrong key", func(t *testing.T) {
		req := multipartRequest(t, "resume.pdf", []byte("x"), "")
		req.Header.Set("X-API-Key", "nope")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bearer token", func(t *testing.T) {
		req := multipartRequest(t, "resume.pdf", []byte("x"), "")
		req.Header.Set("Authorization", "Bearer secret-key-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("health stays open", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRateLimit(t *testing.T) {
	fa := &fakeAnalyzer{report: &types.Report{}}
	srv := newTestServer(t, fa, func(c *ServerConfig) {
		c.RateLimit = &config.RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 1,
			BurstCapacity:  1,
			ByIP:           true,
			Window:         time.Minute,
		}
	})
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, multipartRequest(t, "resume.pdf", []byte("x"), ""))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, multipartRequest(t, "resume.pdf", []byte("x"), ""))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, fa.calls)

	stats := srv.RateLimiter.GetStats()
	assert.Equal(t, int64(1), stats["rejected_requests"])
	assert.Equal(t, 1, stats["active_limiters"])
}

func TestGetRateLimitKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set("X-Forwarded-For", "bogus, 203.0.113.7, 10.0.0.2")

	assert.Equal(t, "ip:203.0.113.7", getRateLimitKey(req, true, true))

	req.Header.Set("X-API-Key", "k1")
	assert.Equal(t, "api_key:k1", getRateLimitKey(req, true, true))
	assert.Equal(t, "ip:203.0.113.7", getRateLimitKey(req, false, true))
	assert.Equal(t, "", getRateLimitKey(req, false, false))
}

func TestHealthHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := newTestServer(t, &fakeAnalyzer{}, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "resumescan", body["service"])
		rules := body["rules"].(map[string]any)
		assert.Equal(t, "test-rules", rules["version"])
		assert.Equal(t, true, rules["watcher_running"])
	})

	t.Run("degraded without lemmatizer", func(t *testing.T) {
		srv := newTestServer(t, &fakeAnalyzer{}, nil)
		srv.Deps.Lemmatizer = fakeLemmatizer{loaded: false}
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"degraded"`)
	})

	t.Run("method not allowed", func(t *testing.T) {
		srv := newTestServer(t, &fakeAnalyzer{}, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestStatsHandler(t *testing.T) {
	srv := newTestServer(t, &fakeAnalyzer{}, func(c *ServerConfig) {
		c.APIKeys = []string{"k"}
	})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "test-rules", body["rules_version"])
	assert.Equal(t, map[string]any{"enabled": false}, body["rate_limiting"])
	server := body["server"].(map[string]any)
	assert.Equal(t, true, server["auth_enabled"])
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "abcdefgh****", maskAPIKey("abcdefghijkl"))
}

func TestSetupHTTPServerRequiresAnalyzer(t *testing.T) {
	srv := NewServer(nil, ServerConfig{Port: "0"}, Dependencies{}, nil, nil)
	_, err := srv.setupHTTPServer()
	assert.Error(t, err)
}

func TestConfigureTLS(t *testing.T) {
	srv := NewServer(nil, ServerConfig{TLSConfig: config.TLSConfig{Mode: "server"}}, Dependencies{}, nil, nil)
	assert.Error(t, srv.configureTLS(&http.Server{Addr: ":0"}))

	srv.TLSConfig = config.TLSConfig{Mode: "mutual"}
	assert.Error(t, srv.configureTLS(&http.Server{Addr: ":0"}))

	srv.TLSConfig = config.TLSConfig{Mode: "disabled"}
	hs := &http.Server{Addr: ":0"}
	require.NoError(t, srv.configureTLS(hs))
	assert.Nil(t, hs.TLSConfig)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	srv := newTestServer(t, &fakeAnalyzer{}, func(c *ServerConfig) {
		c.Host = "127.0.0.1"
		c.Port = "0"
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
