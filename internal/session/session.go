// Package session holds the process-wide mutable state of the service: the
// current document (at most one at a time) and the status record of the
// latest ingestion job. All access goes through an explicit mutex; handlers
// and the background job runner run on different goroutines.
package session

import (
	"os"
	"sync"
	"time"
)

// Status is the externally visible state of an ingestion job.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Stage identifies the pipeline step an ingestion job is executing.
type Stage string

const (
	StageInitializing    Stage = "initializing"
	StageRecreatingIndex Stage = "recreating_index"
	StageProcessingFile  Stage = "processing_file"
	StageLoadingToStore  Stage = "loading_to_vector_store"
	StageFinalizing      Stage = "finalizing"
	StageCompleted       Stage = "completed"
	StageFailed          Stage = "failed"
)

// stageOrder defines the canonical progression of stages. Observed stage
// sequences are monotonic with respect to this order.
var stageOrder = map[Stage]int{
	StageInitializing:    0,
	StageRecreatingIndex: 1,
	StageProcessingFile:  2,
	StageLoadingToStore:  3,
	StageFinalizing:      4,
	StageCompleted:       5,
	StageFailed:          5,
}

// StageRank returns the position of a stage in the canonical progression.
func StageRank(s Stage) int {
	return stageOrder[s]
}

// Job is the pollable status record of one ingestion run. It is the only
// externally observable progress signal of the background runner.
type Job struct {
	ID                string     `json:"processingId"`
	Status            Status     `json:"status"`
	Stage             Stage      `json:"stage"`
	Progress          int        `json:"progress"`
	Filename          string     `json:"filename"`
	ChunkCount        int        `json:"chunks,omitempty"`
	Error             string     `json:"error,omitempty"`
	ErrorKind         string     `json:"errorKind,omitempty"`
	StartedAt         time.Time  `json:"startedAt"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	ProcessingSeconds float64    `json:"processingTime,omitempty"`
}

// Document describes the currently loaded upload.
type Document struct {
	Filename   string // original client-side filename
	StoredPath string // path of the stored copy on disk
	Size       int64
	Extension  string
}

// Session is the shared state container. A single instance is owned by the
// server and passed to the components that read or mutate it.
type Session struct {
	mu  sync.RWMutex
	doc *Document
	job *Job
}

// New creates an empty session.
func New() *Session {
	return &Session{}
}

// NewJob creates a fresh job record in the initializing state.
func NewJob(id, filename string) *Job {
	return &Job{
		ID:        id,
		Status:    StatusProcessing,
		Stage:     StageInitializing,
		Progress:  0,
		Filename:  filename,
		StartedAt: time.Now().UTC(),
	}
}

// PutJob installs a job as the tracked one, replacing any previous record.
// Only the latest job's status is retained; clients that care about a prior
// job's terminal state must poll it to completion before uploading again.
func (s *Session) PutJob(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.job = job
}

// Job returns a copy of the tracked job if its ID matches, or nil.
func (s *Session) Job(id string) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.job == nil || s.job.ID != id {
		return nil
	}
	copy := *s.job
	return &copy
}

// UpdateJob applies a mutation to the tracked job if its ID matches.
func (s *Session) UpdateJob(id string, mutate func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil || s.job.ID != id {
		return
	}
	mutate(s.job)
}

// SetDocument records the current document, replacing any previous one.
func (s *Session) SetDocument(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
}

// Document returns a copy of the current document, or nil if none is loaded.
func (s *Session) Document() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil
	}
	copy := *s.doc
	return &copy
}

// ClearDocument forgets the current document. When deleteFile is set the
// stored copy is removed from disk as well; stale vectors are purged by index
// recreation on the next upload, not here.
func (s *Session) ClearDocument(deleteFile bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil
	}

	var err error
	if deleteFile && s.doc.StoredPath != "" {
		err = os.Remove(s.doc.StoredPath)
		if os.IsNotExist(err) {
			err = nil
		}
	}
	s.doc = nil
	return err
}
