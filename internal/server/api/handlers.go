// Package api provides the HTTP handlers and routes of the service.
package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"loglens/internal/apperrors"
	"loglens/internal/config"
	"loglens/internal/metrics"
	"loglens/internal/rag/loaders"
	"loglens/internal/service"
	"loglens/internal/session"
	"loglens/pkg/logger"
)

// API provides the handlers for the document upload and query endpoints.
type API struct {
	agent  *service.Agent
	cfg    *config.AppConfig
	logger *logger.Logger
}

// NewAPI creates a new API handler. agent may be nil when the vector index
// could not be reached at startup; handlers then answer with a configuration
// error instead of crashing the process.
func NewAPI(agent *service.Agent, cfg *config.AppConfig, logger *logger.Logger) *API {
	return &API{
		agent:  agent,
		cfg:    cfg,
		logger: logger,
	}
}

// StatusHandler reports service health and the currently loaded file.
func (a *API) StatusHandler(c *gin.Context) {
	agentState := "ready"
	var currentFile interface{}
	if a.agent == nil {
		agentState = "not_initialized"
	} else if doc := a.agent.Session().Document(); doc != nil {
		currentFile = gin.H{
			"filename": doc.Filename,
			"size":     doc.Size,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"agent":       agentState,
		"currentFile": currentFile,
	})
}

// UploadHandler accepts a multipart file upload, validates it, stores it, and
// starts the background ingestion job. Validation failures are answered
// before any processing starts and never create a job.
func (a *API) UploadHandler(c *gin.Context) {
	if a.agent == nil {
		a.respondError(c, apperrors.New(apperrors.KindConfiguration, "Agent not initialized"))
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		a.respondError(c, apperrors.New(apperrors.KindValidation, "No file uploaded"))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	fileType := strings.TrimPrefix(ext, ".")
	if !loaders.Supported(ext) {
		metrics.FileUploadsTotal.WithLabelValues(fileType, "error").Inc()
		a.respondError(c, apperrors.Newf(apperrors.KindValidation,
			"unsupported file type %q. Supported formats: %s", ext, loaders.SupportedList()))
		return
	}

	if header.Size > a.cfg.Server.MaxUploadBytes {
		metrics.FileUploadsTotal.WithLabelValues(fileType, "error").Inc()
		a.respondError(c, apperrors.Newf(apperrors.KindValidation,
			"file too large: %d bytes (limit %d)", header.Size, a.cfg.Server.MaxUploadBytes))
		return
	}

	if err := os.MkdirAll(a.cfg.Server.UploadDir, 0o755); err != nil {
		a.logger.WithError(err).Error("could not create upload directory")
		a.respondError(c, apperrors.Wrap(apperrors.KindUnknown, "failed to store upload", err))
		return
	}

	storedName := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(header.Filename))
	storedPath := filepath.Join(a.cfg.Server.UploadDir, storedName)
	if err := c.SaveUploadedFile(header, storedPath); err != nil {
		a.logger.WithError(err).Error("could not save upload")
		a.respondError(c, apperrors.Wrap(apperrors.KindUnknown, "failed to store upload", err))
		return
	}

	// The extension whitelist decides the loader; content sniffing rejects
	// renamed binaries before one ever runs.
	if mtype, err := mimetype.DetectFile(storedPath); err == nil {
		a.logger.WithField("mime", mtype.String()).Info(fmt.Sprintf("stored upload %s", storedName))
		if !contentMatchesExtension(ext, mtype) {
			if rmErr := os.Remove(storedPath); rmErr != nil && !os.IsNotExist(rmErr) {
				a.logger.WithError(rmErr).Warn("could not remove rejected upload")
			}
			metrics.FileUploadsTotal.WithLabelValues(fileType, "error").Inc()
			a.respondError(c, apperrors.Newf(apperrors.KindValidation,
				"file content (%s) does not match its %s extension", mtype.String(), ext))
			return
		}
	}

	doc := &session.Document{
		Filename:   header.Filename,
		StoredPath: storedPath,
		Size:       header.Size,
		Extension:  fileType,
	}

	job, err := a.agent.Ingest(doc, c.PostForm("embeddingProvider"))
	if err != nil {
		if rmErr := os.Remove(storedPath); rmErr != nil && !os.IsNotExist(rmErr) {
			a.logger.WithError(rmErr).Warn("could not remove rejected upload")
		}
		metrics.FileUploadsTotal.WithLabelValues(fileType, "error").Inc()
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"processingId": job.ID,
		"filename":     job.Filename,
		"size":         header.Size,
		"status":       job.Status,
	})
}

// UploadStatusHandler returns the job record for the given processing ID.
func (a *API) UploadStatusHandler(c *gin.Context) {
	if a.agent == nil {
		a.respondError(c, apperrors.New(apperrors.KindConfiguration, "Agent not initialized"))
		return
	}

	job := a.agent.Session().Job(c.Param("id"))
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Processing job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// QueryHandler answers a question against the currently loaded document.
func (a *API) QueryHandler(c *gin.Context) {
	if a.agent == nil {
		a.respondError(c, apperrors.New(apperrors.KindConfiguration, "Agent not initialized"))
		return
	}

	var payload struct {
		Question          string `json:"question"`
		EmbeddingProvider string `json:"embeddingProvider"`
		GroqModel         string `json:"groqModel"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		a.respondError(c, apperrors.New(apperrors.KindValidation, "Invalid request payload"))
		return
	}

	start := time.Now()
	result, err := a.agent.Query(c.Request.Context(), payload.Question, payload.EmbeddingProvider, payload.GroqModel)
	metrics.QueryResponseTime.WithLabelValues("document").Observe(time.Since(start).Seconds())
	if err != nil {
		a.logger.WithError(err).Error("query failed")
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer":    result.Answer,
		"sources":   result.Sources,
		"question":  payload.Question,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// RemoveFileHandler forgets the current document and deletes its stored copy.
func (a *API) RemoveFileHandler(c *gin.Context) {
	if a.agent == nil {
		a.respondError(c, apperrors.New(apperrors.KindConfiguration, "Agent not initialized"))
		return
	}

	if err := a.agent.Session().ClearDocument(true); err != nil {
		a.logger.WithError(err).Warn("could not delete stored file")
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "File removed successfully",
	})
}

// ClearHandler resets the session without touching the stored file. Stale
// vectors are purged by index recreation on the next upload.
func (a *API) ClearHandler(c *gin.Context) {
	if a.agent == nil {
		a.respondError(c, apperrors.New(apperrors.KindConfiguration, "Agent not initialized"))
		return
	}

	if err := a.agent.Session().ClearDocument(false); err != nil {
		a.logger.WithError(err).Warn("could not clear session")
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Context cleared",
	})
}

// ConfigHandler exposes the active defaults and the selectable providers and
// models, so the UI can populate its pickers.
func (a *API) ConfigHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"embeddingProvider":  a.cfg.Embedding.Provider,
		"groqModel":          a.cfg.Groq.Model,
		"indexName":          a.cfg.Milvus.IndexName,
		"chunkSize":          a.cfg.Retrieval.ChunkSize,
		"chunkOverlap":       a.cfg.Retrieval.ChunkOverlap,
		"topK":               a.cfg.Retrieval.TopK,
		"maxUploadBytes":     a.cfg.Server.MaxUploadBytes,
		"supportedFormats":   loaders.SupportedList(),
		"availableProviders": config.AvailableProviders,
		"availableModels":    config.AvailableModels,
	})
}

// contentMatchesExtension checks the sniffed content type against the
// whitelisted extension. Binary formats must sniff as themselves; the text
// family accepts anything descending from text/plain.
func contentMatchesExtension(ext string, mtype *mimetype.MIME) bool {
	switch ext {
	case ".pdf":
		return mtype.Is("application/pdf")
	case ".docx":
		return mtype.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document") ||
			mtype.Is("application/zip")
	case ".doc":
		return mtype.Is("application/msword") || mtype.Is("application/x-ole-storage")
	default:
		for m := mtype; m != nil; m = m.Parent() {
			if m.Is("text/plain") {
				return true
			}
		}
		return false
	}
}

// respondError maps a classified error to an HTTP status and a structured
// details payload the UI uses to suggest a remedy.
func (a *API) respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	c.JSON(statusFor(kind), gin.H{
		"error":   err.Error(),
		"details": errorDetails(kind, err, a.cfg),
	})
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation, apperrors.KindNoDocument, apperrors.KindEmptyDocument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorDetails classifies the failure for the client: which subsystem failed,
// which provider was involved, and what the operator can do about it.
func errorDetails(kind apperrors.Kind, err error, cfg *config.AppConfig) gin.H {
	details := gin.H{
		"type":    string(kind),
		"message": err.Error(),
	}

	switch kind {
	case apperrors.KindConfiguration:
		details["provider"] = cfg.Embedding.Provider
	case apperrors.KindInference:
		details["provider"] = "groq"
		if strings.Contains(err.Error(), "decommissioned") {
			details["message"] = fmt.Sprintf(
				"The selected model has been decommissioned. Try one of: %s",
				strings.Join(config.AvailableModels, ", "))
		}
	case apperrors.KindIndexUnavailable, apperrors.KindTimeout:
		details["provider"] = "milvus"
	}

	return details
}
