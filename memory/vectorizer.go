// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// EmbedderConfig configures the embedding HTTP client the vectorizer
// calls. It mirrors the retry/backoff/jitter knobs the teacher's
// services/trace/weaviate.ClientConfig uses to wrap a remote dependency,
// scoped down to what an embedding endpoint needs: no circuit breaker or
// health-check state machine, since a dirty memory that fails to embed
// simply stays dirty and is retried on the vectorizer's next sweep.
type EmbedderConfig struct {
	APIKey          string
	Model           string
	RetryAttempts   int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
	RetryJitter     float64
	RequestTimeout  time.Duration

	// RequestsPerSecond caps outbound embedding calls, the same way the
	// teacher's ollama_llm.DefaultStreamProcessor wraps its LLM client in
	// a *rate.Limiter rather than letting the vectorizer's batch loop
	// issue requests as fast as the HTTP client allows. 0 disables
	// limiting.
	RequestsPerSecond float64
	RateBurst         int
}

// DefaultEmbedderConfig mirrors the teacher's DefaultClientConfig
// defaults for the knobs this package keeps.
func DefaultEmbedderConfig() EmbedderConfig {
	return EmbedderConfig{
		Model:             string(openai.SmallEmbedding3),
		RetryAttempts:     3,
		RetryBackoff:      100 * time.Millisecond,
		MaxRetryBackoff:   5 * time.Second,
		RetryJitter:       0.25,
		RequestTimeout:    10 * time.Second,
		RequestsPerSecond: 10,
		RateBurst:         5,
	}
}

// Validate reports the first configuration error found, in the same
// field-name-in-message style as the teacher's ClientConfig.Validate.
func (c EmbedderConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("embedder config: api_key is required")
	}
	if c.RetryAttempts < 0 {
		return errors.New("embedder config: retry_attempts must be >= 0")
	}
	if c.RetryJitter < 0 || c.RetryJitter > 1 {
		return errors.New("embedder config: retry_jitter must be within [0, 1]")
	}
	return nil
}

// Embedder calls an external embedding endpoint with retry and backoff.
type Embedder struct {
	client  *openai.Client
	config  EmbedderConfig
	limiter *rate.Limiter
}

// NewEmbedder validates cfg and returns an Embedder wrapping an OpenAI
// embeddings client.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Embedder{client: openai.NewClient(cfg.APIKey), config: cfg}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return e, nil
}

// Embed returns the embedding vector for text, retrying transient
// failures with exponential backoff and jitter up to config.RetryAttempts.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= e.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(e.calculateBackoff(attempt)):
			}
		}

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		reqCtx, cancel := context.WithTimeout(ctx, e.config.RequestTimeout)
		resp, err := e.client.CreateEmbeddings(reqCtx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(e.config.Model),
		})
		cancel()
		if err == nil {
			if len(resp.Data) == 0 {
				return nil, fmt.Errorf("embed: empty response")
			}
			return resp.Data[0].Embedding, nil
		}

		lastErr = err
		if !isRetryable(err) {
			return nil, fmt.Errorf("embed: %w", err)
		}
	}
	return nil, fmt.Errorf("embed: exhausted %d retries: %w", e.config.RetryAttempts, lastErr)
}

// calculateBackoff is exponential backoff from config.RetryBackoff,
// capped at config.MaxRetryBackoff, jittered by +/- config.RetryJitter.
func (e *Embedder) calculateBackoff(attempt int) time.Duration {
	backoff := e.config.RetryBackoff * time.Duration(1<<uint(attempt))
	if backoff > e.config.MaxRetryBackoff {
		backoff = e.config.MaxRetryBackoff
	}
	if e.config.RetryJitter == 0 {
		return backoff
	}
	jitter := (rand.Float64()*2 - 1) * e.config.RetryJitter
	return time.Duration(float64(backoff) * (1 + jitter))
}

// isRetryable classifies an embedding-call error as worth retrying:
// network errors and context deadlines, but never cancellation or a
// plain application-level error.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// VectorizerOptions configures the background batch loop.
type VectorizerOptions struct {
	BatchSize    int
	PollInterval time.Duration
	Logger       *slog.Logger
}

// DefaultVectorizerOptions sets a modest batch size and poll interval,
// tuned for a background loop that should never starve foreground reads.
func DefaultVectorizerOptions() VectorizerOptions {
	return VectorizerOptions{BatchSize: 16, PollInterval: time.Second}
}

// Vectorizer repeatedly pops dirty memories from a Store in batches,
// embeds their goal text, and writes the resulting vector back to both
// the Store (for crash-safe rebuild) and a VectorIndex (for immediate
// searchability), the way resolve.Resolver runs one pass per build
// rather than resolving references as they stream in.
type Vectorizer struct {
	store    *Store
	index    *VectorIndex
	embedder *Embedder
	opts     VectorizerOptions
}

// NewVectorizer wires a Store, VectorIndex and Embedder together.
func NewVectorizer(store *Store, index *VectorIndex, embedder *Embedder, opts VectorizerOptions) *Vectorizer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultVectorizerOptions().BatchSize
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultVectorizerOptions().PollInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Vectorizer{store: store, index: index, embedder: embedder, opts: opts}
}

// Run blocks, vectorizing dirty batches until ctx is cancelled.
func (vz *Vectorizer) Run(ctx context.Context) {
	ticker := time.NewTicker(vz.opts.PollInterval)
	defer ticker.Stop()

	for {
		if err := vz.sweepOnce(ctx); err != nil && ctx.Err() == nil {
			vz.opts.Logger.Warn("vectorizer sweep failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// sweepOnce vectorizes at most one batch of dirty memories.
func (vz *Vectorizer) sweepOnce(ctx context.Context) error {
	batch, err := vz.store.DirtyBatch(ctx, vz.opts.BatchSize)
	if err != nil {
		return fmt.Errorf("dirty batch: %w", err)
	}
	for _, item := range batch {
		vec, err := vz.embedder.Embed(ctx, item.Goal)
		if err != nil {
			vz.opts.Logger.Warn("embedding failed, memory stays dirty", "memid", item.MemID, "error", err)
			continue
		}
		if err := vz.store.SetVector(ctx, item.MemID, vec); err != nil {
			return fmt.Errorf("persist vector for %s: %w", item.MemID, err)
		}
		vz.index.Upsert(item.MemID, vec)
	}
	return nil
}
