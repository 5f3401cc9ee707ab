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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/codeindex"
	"github.com/AleutianAI/codeindex/ast"
	"github.com/AleutianAI/codeindex/config"
	"github.com/AleutianAI/codeindex/logging"
)

var (
	rootPath string
	logger   *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "codeindexd",
		Short: "Multi-language AST symbol index and file-update scheduler",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger = logging.New(logging.Config{Service: "codeindexd"})
			return nil
		},
	}

	indexCmd = &cobra.Command{
		Use:   "index [path]",
		Short: "Force an immediate (re)parse of path",
		Args:  cobra.ExactArgs(1),
		RunE:  runIndex,
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Open the index at --root and block until interrupted",
		RunE:  runWatch,
	}

	defineCmd = &cobra.Command{
		Use:   "define [full_path]",
		Short: "Look up a definition by its full \"::\"-joined path",
		Args:  cobra.ExactArgs(1),
		RunE:  runDefine,
	}

	refsCmd = &cobra.Command{
		Use:   "refs [name]",
		Short: "List every definition whose bare name matches",
		Args:  cobra.ExactArgs(1),
		RunE:  runRefs,
	}

	childrenCmd = &cobra.Command{
		Use:   "children [prefix_path]",
		Short: "List the full paths of every direct child of prefix_path",
		Args:  cobra.ExactArgs(1),
		RunE:  runChildren,
	}

	skeletonCmd = &cobra.Command{
		Use:   "skeleton [file]",
		Short: "Render a condensed struct/class outline for file",
		Args:  cobra.ExactArgs(1),
		RunE:  runSkeleton,
	}

	symbolsCmd = &cobra.Command{
		Use:   "symbols [file] [row:column]",
		Short: "List the definitions enclosing a source position, innermost first",
		Args:  cobra.ExactArgs(2),
		RunE:  runSymbolsAt,
	}

	memoryCmd = &cobra.Command{
		Use:   "memory",
		Short: "Manage the optional memory vector index",
	}

	memoryAddCmd = &cobra.Command{
		Use:   "add [type] [goal] [project]",
		Short: "Record a new memory",
		Args:  cobra.ExactArgs(3),
		RunE:  runMemoryAdd,
	}

	memorySearchCmd = &cobra.Command{
		Use:   "search [query]",
		Short: "Search memories by embedding distance",
		Args:  cobra.ExactArgs(1),
		RunE:  runMemorySearch,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootPath, "root", ".", "project root to index")

	memoryCmd.AddCommand(memoryAddCmd, memorySearchCmd)
	memorySearchCmd.Flags().Int("top-n", 10, "number of results to return")

	rootCmd.AddCommand(indexCmd, watchCmd, defineCmd, refsCmd, childrenCmd, skeletonCmd, symbolsCmd, memoryCmd, serveCmd)
}

func openIndex(ctx context.Context) (*codeindex.Index, error) {
	return codeindex.Open(ctx, rootPath, config.Global)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	idx.Enqueue(args[0], true)
	if err := idx.Wait(ctx); err != nil {
		return err
	}
	return printJSON(idx.Status())
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	logger.Info("watching for changes", "root", rootPath)
	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

func runDefine(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	def, ok, err := idx.DefinitionLookup(ctx, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no definition at %q", args[0])
	}
	return printJSON(def)
}

func runRefs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	defs, err := idx.DefinitionByName(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(defs)
}

func runChildren(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	children, err := idx.ChildrenOf(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(children)
}

func runSkeleton(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	out, err := idx.SkeletonOf(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func runSymbolsAt(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	point, err := parsePoint(args[1])
	if err != nil {
		return err
	}

	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	defs, err := idx.SymbolsAt(ctx, args[0], point)
	if err != nil {
		return err
	}
	return printJSON(defs)
}

func parsePoint(s string) (ast.Point, error) {
	var row, column uint32
	if _, err := fmt.Sscanf(s, "%d:%d", &row, &column); err != nil {
		return ast.Point{}, fmt.Errorf("position %q must be row:column: %w", s, err)
	}
	return ast.Point{Row: row, Column: column}, nil
}

func runMemoryAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	memid, err := idx.MemoryAdd(ctx, args[0], args[1], args[2], nil)
	if err != nil {
		return err
	}
	fmt.Println(memid)
	return nil
}

func runMemorySearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	topN, err := cmd.Flags().GetInt("top-n")
	if err != nil {
		return err
	}
	results, err := idx.MemorySearch(ctx, args[0], topN)
	if err != nil {
		return err
	}
	return printJSON(results)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

