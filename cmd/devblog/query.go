// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/devblog/internal/logging"
	"github.com/tomtom215/devblog/internal/recommend"
)

var relatedCmd = &cobra.Command{
	Use:   "related <post-id>",
	Short: "Print related posts for a published post",
	Long:  "Ranks every other published post against the given post and prints the top results as JSON. Results are served from and stored in the configured cache.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRelated,
}

var byCategoryCmd = &cobra.Command{
	Use:   "by-category <post-id>",
	Short: "Print posts that share the post's categories",
	Args:  cobra.ExactArgs(1),
	RunE:  runByCategory,
}

var byAuthorCmd = &cobra.Command{
	Use:   "by-author <post-id>",
	Short: "Print more posts by the post's author",
	Args:  cobra.ExactArgs(1),
	RunE:  runByAuthor,
}

var (
	queryCount   int
	queryLayout  string
	queryNoCache bool
)

func init() {
	for _, cmd := range []*cobra.Command{relatedCmd, byCategoryCmd, byAuthorCmd} {
		cmd.Flags().IntVarP(&queryCount, "count", "n", 0, "Number of posts to return (0 uses the configured default)")
		cmd.Flags().BoolVar(&queryNoCache, "no-cache", false, "Compute without reading or writing the result cache")
		rootCmd.AddCommand(cmd)
	}
	relatedCmd.Flags().StringVar(&queryLayout, "layout", recommend.DefaultLayout, "Display layout hint echoed in the result (does not affect ranking or caching)")
}

func runRelated(cmd *cobra.Command, args []string) error {
	return runQuery(cmd, args[0], func(ctx context.Context, a *app, post *recommend.Post) (any, error) {
		return a.engine.GetRelatedPosts(ctx, post, countOr(queryCount, a.cfg.Recommend.DefaultCount), queryLayout)
	})
}

func runByCategory(cmd *cobra.Command, args []string) error {
	return runQuery(cmd, args[0], func(ctx context.Context, a *app, post *recommend.Post) (any, error) {
		return a.engine.GetRelatedByCategory(ctx, post, countOr(queryCount, a.cfg.Recommend.CategoryCount))
	})
}

func runByAuthor(cmd *cobra.Command, args []string) error {
	return runQuery(cmd, args[0], func(ctx context.Context, a *app, post *recommend.Post) (any, error) {
		return a.engine.GetMoreFromAuthor(ctx, post, countOr(queryCount, a.cfg.Recommend.AuthorCount))
	})
}

// runQuery loads the source post, runs fn and prints its result.
func runQuery(cmd *cobra.Command, arg string, fn func(context.Context, *app, *recommend.Post) (any, error)) error {
	a, err := setup(!queryNoCache)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := logging.ContextWithNewCorrelationID(cmd.Context())
	post, err := a.post(ctx, arg)
	if err != nil {
		return err
	}

	result, err := fn(ctx, a, post)
	if err != nil {
		return fmt.Errorf("%s %d: %w", cmd.Name(), post.ID, err)
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

// countOr returns n, or def when no count was requested.
func countOr(n, def int) int {
	if n == 0 {
		return def
	}
	return n
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
