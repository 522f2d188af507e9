package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"resumescan/internal/analyzer"
	resumescanErrors "resumescan/internal/errors"
	"resumescan/internal/extract"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// multipartOverhead is the slack allowed for form fields and part
	// headers on top of the resume itself.
	multipartOverhead = 1 << 20
	// maxFormMemory is the in-memory share of a parsed multipart form; the
	// rest spills to disk.
	maxFormMemory = 8 << 20
)

// createAnalyzeHandler handles POST /analyze: a multipart form with a
// "resume" file and an optional "job_description" field.
func (s *Server) createAnalyzeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeErrorResponse(w, "Method not allowed", "use POST with a multipart form", http.StatusMethodNotAllowed)
			return
		}

		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		logger := s.Logger.With("request_id", requestID)

		ctx, span := s.Observability.Tracer("resumescan.api").Start(r.Context(), "api.analyze")
		defer span.End()
		span.SetAttributes(attribute.String("request.id", requestID))

		fail := func(errType string, err error, title, message string, status int) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.String("error.type", errType))
			writeErrorResponse(w, title, message, status)
		}

		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				fail("validation", err, "Request too large",
					fmt.Sprintf("resume exceeds the %d byte limit", s.MaxRequestSize), http.StatusRequestEntityTooLarge)
				return
			}
			fail("validation", err, "Invalid request body", "expected a multipart/form-data body", http.StatusBadRequest)
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile("resume")
		if err != nil {
			fail("validation", err, "Missing resume", "resume file field is required", http.StatusBadRequest)
			return
		}
		defer func() { _ = file.Close() }()

		if header.Filename == "" {
			fail("validation", fmt.Errorf("empty filename"), "Missing resume", "resume file has no name", http.StatusBadRequest)
			return
		}
		if s.MaxRequestSize > 0 && header.Size > s.MaxRequestSize {
			fail("validation", fmt.Errorf("resume too large: %d bytes", header.Size), "Request too large",
				fmt.Sprintf("resume exceeds the %d byte limit", s.MaxRequestSize), http.StatusRequestEntityTooLarge)
			return
		}
		if _, err := extract.DetectFormat(header.Filename); err != nil {
			fail("unsupported_format", err, "Unsupported file type", "only .pdf and .docx resumes are accepted", http.StatusUnsupportedMediaType)
			return
		}

		path, err := s.saveUpload(file, header)
		if err != nil {
			logger.LogError(err, "Failed to store upload", "filename", header.Filename)
			fail("io", err, "Upload failed", "could not store the uploaded resume", http.StatusInternalServerError)
			return
		}
		defer func() {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				logger.Warn("Failed to remove upload", "path", path, "error", err)
			}
		}()

		span.SetAttributes(
			attribute.String("resume.filename", header.Filename),
			attribute.Int64("resume.size", header.Size),
		)

		start := time.Now()
		report, err := s.Deps.Analyzer.Analyze(ctx, analyzer.Request{
			Path:           path,
			JobDescription: r.FormValue("job_description"),
		})
		if err != nil {
			status := http.StatusUnprocessableEntity
			if resumescanErrors.Is(err, resumescanErrors.ErrOCREngineMissing) {
				status = http.StatusServiceUnavailable
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			writeAppErrorResponse(w, err, status)
			return
		}

		logger.Info("Analysis request completed",
			"filename", header.Filename,
			"grade", report.Grade,
			"duration_ms", time.Since(start).Milliseconds())
		span.SetAttributes(
			attribute.Int("report.score", report.OverallScore),
			attribute.String("report.grade", report.Grade),
		)

		writeJSON(w, http.StatusOK, report)
	}
}

// saveUpload copies the uploaded resume to a uniquely named temp file that
// keeps the original extension so the extractor can detect the format.
func (s *Server) saveUpload(src multipart.File, header *multipart.FileHeader) (string, error) {
	dir := s.UploadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}

	path := filepath.Join(dir, uuid.NewString()+filepath.Ext(header.Filename))
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600) // #nosec G304 -- name is a fresh uuid
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}
