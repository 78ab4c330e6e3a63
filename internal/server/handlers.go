package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/digimosa/doc-redact/internal/models"
	"github.com/digimosa/doc-redact/internal/reporting"
	"github.com/digimosa/doc-redact/internal/storage"
	"github.com/digimosa/doc-redact/internal/whitelist"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": apiName, "version": apiVersion})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	// Multipart overhead on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, models.ErrFileTooLarge.Error())
			return
		}
		writeDetail(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "could not read upload")
		return
	}

	name := filepath.Base(header.Filename)
	result, err := s.processor.ProcessUpload(r.Context(), name, data)
	switch {
	case errors.Is(err, models.ErrUnsupportedType):
		writeDetail(w, http.StatusUnsupportedMediaType, err.Error())
		return
	case errors.Is(err, models.ErrFileTooLarge):
		writeDetail(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, models.ErrSelectionRejected):
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.log.WithFields(logrus.Fields{"document": name, "error": err}).Error("processing failed")
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// runFromPath resolves the {id} wildcard, writing the error response itself
// when it returns nil.
func (s *Server) runFromPath(w http.ResponseWriter, r *http.Request) *storage.RunModel {
	if s.runs == nil {
		writeDetail(w, http.StatusServiceUnavailable, "run history is not available")
		return nil
	}
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid run id")
		return nil
	}
	run, err := s.runs.GetRun(r.Context(), uint(id))
	if errors.Is(err, storage.ErrRunNotFound) {
		writeDetail(w, http.StatusNotFound, "File not found")
		return nil
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{"run_id": id, "error": err}).Error("failed to load run")
		writeDetail(w, http.StatusInternalServerError, "failed to load run")
		return nil
	}
	return run
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	run := s.runFromPath(w, r)
	if run == nil {
		return
	}
	if run.RedactedPath == "" {
		writeDetail(w, http.StatusNotFound, "File not found")
		return
	}
	if _, err := os.Stat(run.RedactedPath); err != nil {
		writeDetail(w, http.StatusNotFound, "File not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(run.RedactedPath)))
	http.ServeFile(w, r, run.RedactedPath)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeDetail(w, http.StatusServiceUnavailable, "run history is not available")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeDetail(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		s.log.WithField("error", err).Error("failed to list runs")
		writeDetail(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []storage.RunModel{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if run := s.runFromPath(w, r); run != nil {
		writeJSON(w, http.StatusOK, run)
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	format, ok := strings.CutPrefix(r.PathValue("report"), "report.")
	if !ok {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	switch format {
	case "txt", "json", "xlsx", "html":
	default:
		writeDetail(w, http.StatusNotFound, "unknown report format")
		return
	}

	run := s.runFromPath(w, r)
	if run == nil {
		return
	}
	auditLog, err := run.AuditLog()
	if err != nil {
		s.log.WithFields(logrus.Fields{"run_id": run.ID, "error": err}).Error("stored audit log is unreadable")
		writeDetail(w, http.StatusInternalServerError, "failed to read audit log")
		return
	}

	w.Header().Set("Content-Type", reporting.ContentType(format))
	if format == "txt" || format == "xlsx" {
		name := reporting.ReportName(auditLog.Document)
		if format == "xlsx" {
			name += ".xlsx"
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	}
	if err := reporting.Render(w, format, auditLog, reporting.Options{Threshold: s.threshold}); err != nil {
		s.log.WithFields(logrus.Fields{"run_id": run.ID, "format": format, "error": err}).Error("failed to render report")
	}
}

func (s *Server) handleWhitelist(w http.ResponseWriter, r *http.Request) {
	if s.whitelist == nil {
		writeDetail(w, http.StatusServiceUnavailable, "whitelist is not available")
		return
	}

	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := s.whitelist.Add(req.Value); err != nil {
		if errors.Is(err, whitelist.ErrEmptyValue) {
			writeDetail(w, http.StatusBadRequest, "value cannot be empty")
			return
		}
		s.log.WithField("error", err).Error("failed to add to whitelist")
		writeDetail(w, http.StatusInternalServerError, "failed to save to whitelist")
		return
	}

	s.log.WithField("entries", s.whitelist.Len()).Info("whitelist entry added")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
