package generator

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kbase-cloud/kbsearch/internal/domain"
	"github.com/kbase-cloud/kbsearch/internal/metrics"
)

// Config holds worker pool settings.
type Config struct {
	Workers      int
	QueueSize    int
	JobTimeout   time.Duration
	DrainTimeout time.Duration
}

// Pool is a supervised worker pool that computes and persists article
// embeddings in the background. Enqueue is fire-and-forget: the caller's
// request returns while the job runs on a pool worker.
type Pool struct {
	store    ArticleStore
	embedder Embedder
	logger   *zap.Logger

	jobs       chan string
	wg         sync.WaitGroup
	jobTimeout time.Duration

	baseCtx context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	closed   bool
	inflight map[string]int
}

// NewPool creates the pool and starts its workers.
func NewPool(store ArticleStore, embedder Embedder, cfg Config, logger *zap.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		store:      store,
		embedder:   embedder,
		logger:     logger,
		jobs:       make(chan string, cfg.QueueSize),
		jobTimeout: cfg.JobTimeout,
		baseCtx:    ctx,
		cancel:     cancel,
		inflight:   make(map[string]int),
	}

	for i := 0; i < cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Enqueue schedules embedding generation for an article. Never deduplicated:
// the most recently completed job wins because every success writes the
// whole record. A saturated queue drops the job with a warning; the article
// is re-indexed on its next content edit.
func (p *Pool) Enqueue(articleID string) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		p.logger.Warn("generation pool closed, job dropped", zap.String("article_id", articleID))
		metrics.GenerationJobsTotal.WithLabelValues("dropped").Inc()
		return
	}

	select {
	case p.jobs <- articleID:
		metrics.GenerationJobsTotal.WithLabelValues("enqueued").Inc()
		metrics.GenerationQueueDepth.Set(float64(len(p.jobs)))
	default:
		p.logger.Warn("generation queue full, job dropped", zap.String("article_id", articleID))
		metrics.GenerationJobsTotal.WithLabelValues("dropped").Inc()
	}
}

// Close drains the queue and waits for workers. If ctx expires first, the
// remaining jobs are cancelled and the flags of every in-flight article are
// reset best-effort so no article stays marked in-progress across restarts.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	close(p.jobs)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel() // aborts outstanding provider calls

		p.mu.Lock()
		stuck := make([]string, 0, len(p.inflight))
		for id := range p.inflight {
			stuck = append(stuck, id)
		}
		p.mu.Unlock()

		for _, id := range stuck {
			p.resetFlags(id)
		}
		return ctx.Err()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for id := range p.jobs {
		metrics.GenerationQueueDepth.Set(float64(len(p.jobs)))
		p.process(id)
	}
}

// process runs one generation job: load, mark in-progress, embed metadata
// and content concurrently, then persist both vectors and clear both flags
// in a single write. Failures reset the flags and keep the last-known-good
// vectors untouched.
func (p *Pool) process(id string) {
	p.track(id)
	defer p.untrack(id)

	start := time.Now()
	ctx, cancel := context.WithTimeout(p.baseCtx, p.jobTimeout)
	defer cancel()

	a, err := p.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrArticleNotFound) {
			// Deleted between enqueue and pickup. The call was already
			// asynchronous, so there is nobody to report this to.
			p.logger.Debug("article gone before generation", zap.String("article_id", id))
		} else {
			p.logger.Warn("load article for generation", zap.String("article_id", id), zap.Error(err))
		}
		metrics.GenerationJobsTotal.WithLabelValues("failed").Inc()
		return
	}

	// If this write fails, stop before calling the provider: an article
	// without flags set is safer than a spuriously stuck flag.
	if err := p.store.MarkEmbeddingInProgress(ctx, id); err != nil {
		p.logger.Warn("mark embedding in progress", zap.String("article_id", id), zap.Error(err))
		metrics.GenerationJobsTotal.WithLabelValues("failed").Inc()
		return
	}

	var (
		wg                 sync.WaitGroup
		metaRes, contRes   domain.EmbeddingResult
		metaErr, contErr   error
		metaText, contText = a.MetadataText(), a.Content
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		metaRes, metaErr = p.embedder.Embed(ctx, metaText)
	}()
	go func() {
		defer wg.Done()
		contRes, contErr = p.embedder.Embed(ctx, contText)
	}()
	wg.Wait()

	if metaErr != nil || contErr != nil {
		// All-or-nothing: no partial vectors. Previous embeddings stay as
		// the last-known-good search index; a later edit retries.
		p.logger.Warn("embedding generation failed",
			zap.String("article_id", id),
			zap.NamedError("metadata_err", metaErr),
			zap.NamedError("content_err", contErr),
		)
		p.resetFlags(id)
		metrics.GenerationJobsTotal.WithLabelValues("failed").Inc()
		return
	}

	if err := p.store.StoreEmbeddings(ctx, id, metaRes.Embedding, contRes.Embedding); err != nil {
		p.logger.Warn("store embeddings", zap.String("article_id", id), zap.Error(err))
		p.resetFlags(id)
		metrics.GenerationJobsTotal.WithLabelValues("failed").Inc()
		return
	}

	metrics.GenerationJobsTotal.WithLabelValues("completed").Inc()
	metrics.GenerationJobDuration.Observe(time.Since(start).Seconds())
}

// resetFlags clears both in-progress flags on a fresh context so cleanup
// still lands when the job context is already cancelled.
func (p *Pool) resetFlags(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.store.ClearEmbeddingInProgress(ctx, id); err != nil {
		p.logger.Error("reset embedding flags", zap.String("article_id", id), zap.Error(err))
	}
}

func (p *Pool) track(id string) {
	p.mu.Lock()
	p.inflight[id]++
	p.mu.Unlock()
}

func (p *Pool) untrack(id string) {
	p.mu.Lock()
	p.inflight[id]--
	if p.inflight[id] <= 0 {
		delete(p.inflight, id)
	}
	p.mu.Unlock()
}
