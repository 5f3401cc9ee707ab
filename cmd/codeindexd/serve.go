// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/codeindex"
	"github.com/AleutianAI/codeindex/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose index_status() as a read-only JSON endpoint",
	RunE:  runServe,
}

// statusHandlers wraps a single Index so the /status route can read it
// without a package-level global.
type statusHandlers struct {
	idx *codeindex.Index
}

// handleStatus handles GET /status.
func (h *statusHandlers) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.idx.Status())
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	idx, err := codeindex.Open(ctx, rootPath, config.Global)
	if err != nil {
		return err
	}
	defer idx.Close()

	h := &statusHandlers{idx: idx}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/status", h.handleStatus)

	srv := &http.Server{Addr: config.Global.Serve.Addr, Handler: router}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	logger.Info("serving index status", "addr", config.Global.Serve.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
