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
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedderConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := DefaultEmbedderConfig()
		cfg.APIKey = "sk-test"
		require.NoError(t, cfg.Validate())
	})

	t.Run("missing api key", func(t *testing.T) {
		cfg := DefaultEmbedderConfig()
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api_key")
	})

	t.Run("negative retry attempts", func(t *testing.T) {
		cfg := DefaultEmbedderConfig()
		cfg.APIKey = "sk-test"
		cfg.RetryAttempts = -1
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "retry_attempts")
	})

	t.Run("invalid jitter", func(t *testing.T) {
		cfg := DefaultEmbedderConfig()
		cfg.APIKey = "sk-test"
		cfg.RetryJitter = 1.5
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "retry_jitter")
	})
}

func TestNewEmbedderRejectsInvalidConfig(t *testing.T) {
	_, err := NewEmbedder(EmbedderConfig{})
	require.Error(t, err)
}

func TestNewEmbedderBuildsRateLimiterWhenConfigured(t *testing.T) {
	cfg := DefaultEmbedderConfig()
	cfg.APIKey = "sk-test"
	cfg.RequestsPerSecond = 5
	cfg.RateBurst = 2

	e, err := NewEmbedder(cfg)
	require.NoError(t, err)
	require.NotNil(t, e.limiter)
	require.Equal(t, 2, e.limiter.Burst())
}

func TestNewEmbedderSkipsRateLimiterWhenDisabled(t *testing.T) {
	cfg := DefaultEmbedderConfig()
	cfg.APIKey = "sk-test"
	cfg.RequestsPerSecond = 0

	e, err := NewEmbedder(cfg)
	require.NoError(t, err)
	require.Nil(t, e.limiter)
}

func TestCalculateBackoffWithJitter(t *testing.T) {
	e := &Embedder{config: EmbedderConfig{
		RetryBackoff:    100 * time.Millisecond,
		MaxRetryBackoff: time.Second,
		RetryJitter:     0.25,
	}}

	backoffs := make([]time.Duration, 10)
	for i := range backoffs {
		backoffs[i] = e.calculateBackoff(1)
	}

	expected := 200 * time.Millisecond
	min := time.Duration(float64(expected) * 0.75)
	max := time.Duration(float64(expected) * 1.25)
	for _, b := range backoffs {
		assert.GreaterOrEqual(t, b, min)
		assert.LessOrEqual(t, b, max)
	}
}

func TestCalculateBackoffCapsAtMax(t *testing.T) {
	e := &Embedder{config: EmbedderConfig{
		RetryBackoff:    100 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
		RetryJitter:     0,
	}}
	backoff := e.calculateBackoff(10)
	assert.LessOrEqual(t, backoff, e.config.MaxRetryBackoff)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, isRetryable(nil))
	assert.False(t, isRetryable(context.Canceled))
	assert.True(t, isRetryable(context.DeadlineExceeded))
	assert.False(t, isRetryable(errors.New("application error")))
	assert.True(t, isRetryable(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}))
}

func TestVectorizerSweepLeavesMemoryDirtyOnEmbedFailure(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, Record{MemID: "m1", Type: "t", Goal: "g", Project: "p", CreatedAtUnix: 1}))

	index := NewVectorIndex()
	embedder, err := NewEmbedder(EmbedderConfig{APIKey: "sk-test", RetryAttempts: 0, RetryBackoff: time.Millisecond, MaxRetryBackoff: time.Millisecond})
	require.NoError(t, err)

	vz := NewVectorizer(store, index, embedder, VectorizerOptions{BatchSize: 10, PollInterval: time.Hour})
	// The embedder has no real endpoint reachable in tests, so Embed is
	// expected to fail; the memory should remain dirty afterward.
	_ = vz.sweepOnce(ctx)

	batch, err := store.DirtyBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1, "failed embeds must leave the memory dirty for the next sweep")
}
