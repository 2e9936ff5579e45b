// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/devblog/internal/logging"
)

var publishCmd = &cobra.Command{
	Use:   "publish <post-id>",
	Short: "Mark a post as published",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetPublished(cmd, args[0], true)
	},
}

var unpublishCmd = &cobra.Command{
	Use:   "unpublish <post-id>",
	Short: "Mark a post as draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetPublished(cmd, args[0], false)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete a post",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(unpublishCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runSetPublished(cmd *cobra.Command, arg string, published bool) error {
	return runPostChange(cmd, arg, func(ctx context.Context, a *app, n changeNotifier, id int64) error {
		if err := a.db.SetPublished(ctx, id, published); err != nil {
			return err
		}
		if !published {
			return n.PostUnpublished(ctx, id)
		}
		return n.PostUpdated(ctx, id)
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	return runPostChange(cmd, args[0], func(ctx context.Context, a *app, n changeNotifier, id int64) error {
		if err := a.db.DeletePost(ctx, id); err != nil {
			return err
		}
		return n.PostDeleted(ctx, id)
	})
}

// runPostChange parses the id, applies fn and reports the outcome.
func runPostChange(cmd *cobra.Command, arg string, fn func(context.Context, *app, changeNotifier, int64) error) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	a, notifier, err := setupForChanges()
	if err != nil {
		return err
	}
	defer a.close()
	defer notifier.Close()

	if err := fn(logging.ContextWithNewCorrelationID(cmd.Context()), a, notifier, id); err != nil {
		return fmt.Errorf("%s %d: %w", cmd.Name(), id, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: post %d\n", cmd.Name(), id)
	return nil
}
