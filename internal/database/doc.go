// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

// Package database stores blog posts in DuckDB and serves them to the
// related-posts engine.
//
// # Overview
//
// DB implements recommend.PostRepository. Every read used by the engine
// returns published posts only, with tags and categories attached:
//
//   - GetPublishedExcluding: the full candidate pool for similarity ranking
//   - GetPublishedByCategory: same-category fallback, ordered by shared
//     category count then recency
//   - GetPublishedByAuthor: more-from-author list, newest first
//   - GetPopular: featured posts by share count, used for cache warming
//
// Writes (UpsertPost, SetPublished, DeletePost) are used by the CLI import
// and publishing commands. They do not touch the related-posts cache; the
// caller publishes a post event so subscribers can invalidate it.
//
// # Files
//
//   - database.go: lifecycle (open, ping, close)
//   - database_connection.go: pool configuration and transaction retries
//   - database_schema.go: tables and indexes
//   - database_utils.go: profiling, context timeouts, counts, metrics
//   - posts.go: post queries and writes
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	engine, err := recommend.NewEngine(recCfg, db, store, scorer, logger)
//
// # Thread Safety
//
// DB is safe for concurrent use; database/sql pools the DuckDB connections.
package database
