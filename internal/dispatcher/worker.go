// Package dispatcher runs the worker pool that processes queued split jobs.
package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/scoresplit/internal/analyze"
	"github.com/local/scoresplit/internal/config"
	"github.com/local/scoresplit/internal/filetype"
	"github.com/local/scoresplit/internal/grouping"
	"github.com/local/scoresplit/internal/metadata"
	"github.com/local/scoresplit/internal/metrics"
	"github.com/local/scoresplit/internal/naming"
	"github.com/local/scoresplit/internal/ocr"
	"github.com/local/scoresplit/internal/pdfio"
	"github.com/local/scoresplit/internal/splitter"
	"github.com/local/scoresplit/internal/store"
)

// Job is the queue payload for one split request.
type Job struct {
	JobID     string            `json:"job_id"`
	FileRef   string            `json:"file_ref"`
	OutputDir string            `json:"output_dir"`
	Template  string            `json:"template,omitempty"`
	Threshold float64           `json:"threshold,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	// AnalyzeOnly reports detected parts without writing output files.
	AnalyzeOnly bool `json:"analyze_only,omitempty"`
}

// Queue is the job source the workers consume.
type Queue interface {
	Dequeue(ctx context.Context, consumer string, timeout time.Duration) (string, []byte, error)
	Ack(ctx context.Context, msgID string) error
	IsCancelled(ctx context.Context, jobID string) (bool, error)
	Depth(ctx context.Context) (int64, error)
}

// StatusStore records job progress.
type StatusStore interface {
	Set(ctx context.Context, jobID string, st store.Status) error
}

// Worker consumes split jobs from the queue with a fixed goroutine pool.
type Worker struct {
	cfg        config.Config
	vocabulary []string
	q          Queue
	status     StatusStore
	stop       chan struct{}
	wg         sync.WaitGroup
}

// New creates the worker pool. The vocabulary is loaded once and shared by
// all workers since analyzers never mutate it.
func New(cfg config.Config, vocabulary []string, q Queue, status StatusStore) *Worker {
	return &Worker{
		cfg:        cfg,
		vocabulary: vocabulary,
		q:          q,
		status:     status,
		stop:       make(chan struct{}),
	}
}

// Start launches the worker goroutines.
func (w *Worker) Start() {
	n := w.cfg.Queue.Concurrency
	if n <= 0 {
		n = 2
	}
	for i := 0; i < n; i++ {
		w.wg.Add(1)
		go w.loop(i)
	}
}

// Stop signals the workers and waits for in-flight jobs to finish.
func (w *Worker) Stop(ctx context.Context) error {
	close(w.stop)
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop(id int) {
	defer w.wg.Done()
	consumer := fmt.Sprintf("split-worker-%d", id)
	log.Info().Str("consumer", consumer).Msg("split worker started")

	for {
		select {
		case <-w.stop:
			log.Info().Str("consumer", consumer).Msg("split worker stopped")
			return
		default:
		}

		msgID, data, err := w.q.Dequeue(context.Background(), consumer, 2*time.Second)
		if err != nil {
			log.Error().Err(err).Msg("queue dequeue error")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if data == nil {
			if depth, err := w.q.Depth(context.Background()); err == nil {
				metrics.SetQueueDepth(depth)
			}
			continue
		}

		var job Job
		if err := json.Unmarshal(data, &job); err != nil {
			log.Error().Err(err).Str("msg_id", msgID).Msg("bad job payload, dropping")
			_ = w.q.Ack(context.Background(), msgID)
			continue
		}

		if cancelled, _ := w.q.IsCancelled(context.Background(), job.JobID); cancelled {
			log.Warn().Str("job_id", job.JobID).Msg("job cancelled before processing, skipping")
			_ = w.q.Ack(context.Background(), msgID)
			continue
		}

		w.runJob(job)
		_ = w.q.Ack(context.Background(), msgID)
	}
}

func (w *Worker) runJob(job Job) {
	ctx := context.Background()
	logger := log.With().Str("job_id", job.JobID).Str("file", job.FileRef).Logger()

	start := time.Now()
	_ = w.status.Set(ctx, job.JobID, store.Status{Status: "processing", Progress: 10, Message: "resolving input", Start: &start})

	fail := func(msg string, err error) {
		logger.Error().Err(err).Msg(msg)
		metrics.IncJobProcessed("error")
		end := time.Now()
		_ = w.status.Set(ctx, job.JobID, store.Status{
			Status: "failed", Progress: 100, Message: fmt.Sprintf("%s: %v", msg, err), Start: &start, End: &end,
		})
	}

	localPath, cleanup, err := pdfio.Resolve(ctx, job.FileRef)
	if err != nil {
		fail("resolve input", err)
		return
	}
	defer cleanup()

	info, err := filetype.Detect(localPath)
	if err != nil {
		fail("detect file type", err)
		return
	}
	if !info.Supported {
		fail("unsupported input", fmt.Errorf("%s", info.Description))
		return
	}

	tess, err := ocr.NewTesseract(w.cfg.OCR.Language)
	if err != nil {
		fail("init OCR", err)
		return
	}
	defer tess.Close()

	template := job.Template
	if template == "" {
		template = w.cfg.Split.Template
	}
	threshold := job.Threshold
	if threshold == 0 {
		threshold = w.cfg.Split.SimilarityThreshold
	}
	outputDir := job.OutputDir
	if outputDir == "" {
		outputDir = w.cfg.Split.OutputDir
	}

	meta, _ := metadata.NewStore("")
	meta.Update(job.FileRef, job.Metadata, nil)

	sp := splitter.New(splitter.Deps{
		DocPath:  job.FileRef,
		Source:   ocr.NewProvider(localPath, w.cfg.OCR, tess),
		Writer:   pdfio.NewDocument(localPath),
		Analyzer: analyze.New(w.vocabulary),
		Grouper:  grouping.New(threshold),
		Namer:    naming.New(template),
		Metadata: meta,
	})

	_ = w.status.Set(ctx, job.JobID, store.Status{Status: "processing", Progress: 30, Message: "analyzing pages", Start: &start})

	groups, err := sp.AnalyzeAll(ctx)
	if err != nil {
		fail("analyze pages", err)
		return
	}

	result := map[string]interface{}{
		"detected_parts": groups.Names(),
	}

	if !job.AnalyzeOnly {
		_ = w.status.Set(ctx, job.JobID, store.Status{Status: "processing", Progress: 70, Message: "writing part files", Start: &start})
		outputs, err := sp.Split(ctx, outputDir)
		if err != nil {
			fail("write part files", err)
			return
		}
		result["output_files"] = outputs
	}

	metrics.IncJobProcessed("success")
	end := time.Now()
	_ = w.status.Set(ctx, job.JobID, store.Status{
		Status: "done", Progress: 100, Message: "completed", Start: &start, End: &end, Metadata: result,
	})
	logger.Info().Int("parts", groups.Len()).Dur("elapsed", end.Sub(start)).Msg("job completed")
}
