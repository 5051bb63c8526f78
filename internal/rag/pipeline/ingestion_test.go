package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loglens/internal/apperrors"
	"loglens/internal/embedding"
	"loglens/internal/rag/loaders"
	"loglens/internal/rag/splitters"
	"loglens/internal/session"
	"loglens/pkg/logger"
)

func newIngestion(idx *memoryIndex, sess *session.Session) *Ingestion {
	return &Ingestion{
		Loader:    loaders.NewTxtLoader(),
		Splitter:  splitters.NewRecursiveSplitter(50, 10),
		Embedder:  embedding.NewSimpleModel(8),
		Index:     idx,
		IndexName: idx.NameFor("simple"),
		Dimension: 8,
		BatchSize: 2,
		Provider:  "simple",
		Session:   sess,
		Log:       logger.New("test"),
	}
}

func storedUpload(t *testing.T, content string) *session.Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return &session.Document{
		Filename:   "app.log",
		StoredPath: path,
		Size:       int64(len(content)),
		Extension:  "log",
	}
}

func TestIngestionCompletes(t *testing.T) {
	idx := newMemoryIndex()
	sess := session.New()
	sess.PutJob(session.NewJob("job-1", "app.log"))

	doc := storedUpload(t, strings.Repeat("error line in the log file\n", 10))
	newIngestion(idx, sess).Run(context.Background(), "job-1", doc)

	job := sess.Job("job-1")
	require.NotNil(t, job)
	assert.Equal(t, session.StatusCompleted, job.Status)
	assert.Equal(t, session.StageCompleted, job.Stage)
	assert.Equal(t, 100, job.Progress)
	assert.Greater(t, job.ChunkCount, 1)
	require.NotNil(t, job.CompletedAt)
	assert.Empty(t, job.Error)

	assert.Equal(t, job.ChunkCount, idx.count(idx.NameFor("simple")))

	current := sess.Document()
	require.NotNil(t, current)
	assert.Equal(t, "app.log", current.Filename)
}

func TestIngestionStagesAreMonotonic(t *testing.T) {
	idx := newMemoryIndex()
	sess := session.New()
	sess.PutJob(session.NewJob("job-1", "app.log"))

	var mu sync.Mutex
	var observed []session.Stage
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if job := sess.Job("job-1"); job != nil {
				mu.Lock()
				observed = append(observed, job.Stage)
				mu.Unlock()
				if job.Stage == session.StageCompleted || job.Stage == session.StageFailed {
					return
				}
			}
			time.Sleep(time.Millisecond)
		}
	}()

	doc := storedUpload(t, strings.Repeat("error line in the log file\n", 50))
	newIngestion(idx, sess).Run(context.Background(), "job-1", doc)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("observer did not finish")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, observed)
	for i := 1; i < len(observed); i++ {
		assert.GreaterOrEqual(t,
			session.StageRank(observed[i]), session.StageRank(observed[i-1]),
			"stage went backwards: %v", observed)
	}
	assert.Equal(t, session.StageCompleted, observed[len(observed)-1])
}

func TestIngestionSurvivesRecreateFailure(t *testing.T) {
	idx := newMemoryIndex()
	idx.recreateErr = errors.New("index service briefly unavailable")
	sess := session.New()
	sess.PutJob(session.NewJob("job-1", "app.log"))

	doc := storedUpload(t, "a perfectly fine log line\n")
	newIngestion(idx, sess).Run(context.Background(), "job-1", doc)

	job := sess.Job("job-1")
	require.NotNil(t, job)
	assert.Equal(t, session.StatusCompleted, job.Status)
	assert.Equal(t, 1, idx.recreates)
}

func TestIngestionFailsOnEmptyDocument(t *testing.T) {
	idx := newMemoryIndex()
	sess := session.New()
	sess.PutJob(session.NewJob("job-1", "app.log"))

	doc := storedUpload(t, "   \n\t  \n")
	newIngestion(idx, sess).Run(context.Background(), "job-1", doc)

	job := sess.Job("job-1")
	require.NotNil(t, job)
	assert.Equal(t, session.StatusFailed, job.Status)
	assert.Equal(t, session.StageFailed, job.Stage)
	assert.Equal(t, string(apperrors.KindEmptyDocument), job.ErrorKind)
	assert.NotEmpty(t, job.Error)

	// the stored upload is removed on failure
	_, err := os.Stat(doc.StoredPath)
	assert.True(t, os.IsNotExist(err))

	// the failed upload never becomes the current document
	assert.Nil(t, sess.Document())
}

func TestIngestionFailsOnStoreError(t *testing.T) {
	idx := newMemoryIndex()
	idx.addErr = apperrors.New(apperrors.KindIndexUnavailable, "insert rejected")
	sess := session.New()
	sess.PutJob(session.NewJob("job-1", "app.log"))

	doc := storedUpload(t, "a perfectly fine log line\n")
	newIngestion(idx, sess).Run(context.Background(), "job-1", doc)

	job := sess.Job("job-1")
	require.NotNil(t, job)
	assert.Equal(t, session.StatusFailed, job.Status)
	assert.Equal(t, string(apperrors.KindIndexUnavailable), job.ErrorKind)
}
