package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/JonMunkholm/catalogimport/internal/database"
	"github.com/JonMunkholm/catalogimport/internal/logging"
)

// multipartOverhead is allowed on top of the file limit for part headers
// and boundaries.
const multipartOverhead = 1 << 20

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var errUnknownTemplateFormat = errors.New("unknown template format")

// handleImport stages the multipart "file" part and imports it.
//
// A result is returned with 200 when at least one row was committed and with
// 422 when every row failed validation. Fatal errors are mapped by statusFor.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	staged, err := s.stageFilePart(r, maxSize)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Info("import received",
		"file", staged.Name(),
		"content_type", staged.ContentType(),
		"size", staged.Size(),
	)

	// The service releases the staged file.
	result, err := s.service.Import(r.Context(), staged)
	if err != nil {
		if errors.Is(err, core.ErrTooManyImports) {
			w.Header().Set("Retry-After", "30")
		}
		s.respondError(w, r, err, statusFor(err))
		return
	}

	status := http.StatusOK
	if result.ReviewsAdded == 0 && len(result.RowErrors) > 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, r, status, result)
}

// stageFilePart streams the "file" form part to the staging directory
// without buffering the request.
func (s *Server) stageFilePart(r *http.Request, maxSize int64) (*core.StagedFile, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errNoFile, err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errNoFile
		}
		if err != nil {
			return nil, fmt.Errorf("read multipart body: %w", err)
		}
		if part.FormName() != "file" || part.FileName() == "" {
			part.Close()
			continue
		}

		staged, err := core.StageUpload(s.cfg.Import.TempDir, part.FileName(), part.Header.Get("Content-Type"), part, maxSize)
		part.Close()
		return staged, err
	}
}

// handleTemplate serves the import template as JSON (default), CSV or XLSX.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))

	switch format {
	case "", "json":
		writeJSON(w, r, http.StatusOK, core.ImportTemplate())
	case "csv":
		s.sendTemplate(w, r, "catalog_import_template.csv", contentTypeCSV, core.WriteTemplateCSV)
	case "xlsx":
		s.sendTemplate(w, r, "catalog_import_template.xlsx", contentTypeXLSX, core.WriteTemplateXLSX)
	default:
		err := fmt.Errorf("%w %q", errUnknownTemplateFormat, format)
		s.respondError(w, r, err, http.StatusBadRequest)
	}
}

// sendTemplate renders into memory first so a write failure still yields
// an error response.
func (s *Server) sendTemplate(w http.ResponseWriter, r *http.Request, filename, contentType string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Warn("write template failed", "error", err)
	}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string                  `json:"status"`
	Imports core.LimiterStatus      `json:"imports"`
	Catalog *database.CatalogCounts `json:"catalog,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Imports: s.service.LimiterStatus(),
	}

	if s.counter != nil {
		counts, err := s.counter.CountCatalog(r.Context())
		if err != nil {
			logging.FromContext(r.Context()).Error("health check failed", "error", err)
			resp.Status = "degraded"
			resp.Error = core.MapError(err).Message
			writeJSON(w, r, http.StatusServiceUnavailable, resp)
			return
		}
		resp.Catalog = &counts
	}

	writeJSON(w, r, http.StatusOK, resp)
}
