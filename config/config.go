// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config defines codeindexd's configuration schema and loads it
// from ~/.codeindex/codeindex.yaml, creating the file with defaults on
// first run.
package config

import (
	"time"
)

// SchedulerConfig configures the file-watching build scheduler.
type SchedulerConfig struct {
	CooldownSeconds     int      `yaml:"cooldown_seconds"`
	SweepIntervalSeconds int     `yaml:"sweep_interval_seconds"`
	ReadyBufferSize     int      `yaml:"ready_buffer_size"`
	MaxFiles            int      `yaml:"max_files"`
	IgnorePatterns      []string `yaml:"ignore_patterns"`
}

// Cooldown returns the configured cooldown as a time.Duration.
func (s SchedulerConfig) Cooldown() time.Duration {
	return time.Duration(s.CooldownSeconds) * time.Second
}

// SweepInterval returns the configured sweep interval as a time.Duration.
func (s SchedulerConfig) SweepInterval() time.Duration {
	return time.Duration(s.SweepIntervalSeconds) * time.Second
}

// MemoryConfig configures the optional memory vector index.
type MemoryConfig struct {
	Enabled          bool   `yaml:"enabled"`
	EmbeddingModel   string `yaml:"embedding_model"`
	APIKeyEnv        string `yaml:"api_key_env"`
	BatchSize        int    `yaml:"batch_size"`
	RetryAttempts    int    `yaml:"retry_attempts"`
}

// ServeConfig configures the optional gin status-only HTTP endpoint.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// CodeIndexConfig is the root configuration structure for codeindexd.
type CodeIndexConfig struct {
	// DataDir holds the symbol store directory and memory sqlite file.
	// Defaults to ~/.codeindex.
	DataDir   string          `yaml:"data_dir"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Memory    MemoryConfig    `yaml:"memory"`
	Serve     ServeConfig     `yaml:"serve"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() CodeIndexConfig {
	return CodeIndexConfig{
		DataDir: "~/.codeindex",
		Scheduler: SchedulerConfig{
			CooldownSeconds:      20,
			SweepIntervalSeconds: 10,
			ReadyBufferSize:      4096,
			MaxFiles:             200_000,
			IgnorePatterns:       []string{".git", "node_modules", "vendor", ".codeindex"},
		},
		Memory: MemoryConfig{
			Enabled:        false,
			EmbeddingModel: "text-embedding-3-small",
			APIKeyEnv:      "OPENAI_API_KEY",
			BatchSize:      16,
			RetryAttempts:  3,
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:8181",
		},
	}
}
