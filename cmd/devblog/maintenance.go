// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/devblog/internal/logging"
)

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Precompute related posts for popular posts",
	Long:  "Computes and caches related posts for the most popular published posts (featured, most shared, newest), paced by warm.rate_per_second.",
	Args:  cobra.NoArgs,
	RunE:  runWarm,
}

var invalidateCmd = &cobra.Command{
	Use:   "invalidate [post-id]",
	Short: "Drop cached related posts",
	Long:  "Drops the cached related, category and author lists of one post, or with --all every cached list.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInvalidate,
}

var (
	warmLimit     int
	invalidateAll bool
)

func init() {
	warmCmd.Flags().IntVarP(&warmLimit, "limit", "l", 0, "Number of popular posts to warm (0 uses warm.popular_limit)")
	invalidateCmd.Flags().BoolVar(&invalidateAll, "all", false, "Drop every cached related-posts list")

	rootCmd.AddCommand(warmCmd)
	rootCmd.AddCommand(invalidateCmd)
}

func runWarm(cmd *cobra.Command, _ []string) error {
	a, err := setup(true)
	if err != nil {
		return err
	}
	defer a.close()

	warmed, err := a.engine.WarmPopular(logging.ContextWithNewCorrelationID(cmd.Context()), warmLimit)
	if err != nil {
		return fmt.Errorf("failed to warm cache: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "warmed %d posts\n", warmed)
	return nil
}

func runInvalidate(cmd *cobra.Command, args []string) error {
	if invalidateAll == (len(args) == 1) {
		return fmt.Errorf("pass either a post id or --all")
	}

	var postID int64
	if !invalidateAll {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		postID = id
	}

	a, notifier, err := setupForChanges()
	if err != nil {
		return err
	}
	defer a.close()
	defer notifier.Close()

	ctx := logging.ContextWithNewCorrelationID(cmd.Context())
	if invalidateAll {
		err = notifier.TaxonomyUpdated(ctx)
	} else {
		err = notifier.PostUpdated(ctx, postID)
	}
	if err != nil {
		return fmt.Errorf("failed to invalidate: %w", err)
	}

	if invalidateAll {
		fmt.Fprintln(cmd.OutOrStdout(), "invalidated all related posts")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "invalidated related posts for post %d\n", postID)
	}
	return nil
}
