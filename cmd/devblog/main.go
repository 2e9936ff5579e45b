// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

/*
Package main is the devblog command: the related-posts engine for a
personal tech blog, together with the tooling that feeds it.

# Commands

	serve              run cache warming, the post event router and the ops endpoints
	related <id>       related posts for a published post
	by-category <id>   posts sharing the post's categories
	by-author <id>     more posts by the same author
	warm               precompute related lists for popular posts
	invalidate <id>    drop the cached lists of one post (--all drops every list)
	import <file>      load posts from a YAML file into DuckDB
	publish <id>       mark a post published
	unpublish <id>     mark a post as draft
	delete <id>        remove a post

# Configuration

Settings are layered: built-in defaults, then a YAML file (--config,
CONFIG_PATH, ./devblog.yaml or /etc/devblog/config.yaml), then environment
variables. A .env file in the working directory is loaded first when
present. Example:

	database:
	  path: /data/devblog.duckdb
	cache:
	  backend: badger
	  badger_dir: /data/related-cache
	recommend:
	  cache_ttl: 1h
	  algorithm_version: v2
	events:
	  enabled: true
	  transport: nats
	  embedded_server: true

# Change Propagation

Commands that modify posts tell the engine which cached lists are stale.
With NATS events enabled they publish post events that a running server
consumes. Otherwise they invalidate the configured cache directly, which
for the badger backend requires that no server holds the cache open.

# Signals

serve shuts down gracefully on SIGINT and SIGTERM: the supervisor tree
stops every service, the ops listener drains, then the cache and the
database are closed.
*/
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "devblog",
	Short: "Related posts engine for the devblog",
	Long: "devblog ranks related posts by content, tag, category, author and recency similarity, " +
		"caches the results and keeps the cache fresh as posts change.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (overrides CONFIG_PATH)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
