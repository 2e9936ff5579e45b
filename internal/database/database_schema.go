// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

/*
database_schema.go - Database Schema Management

Tables:
  - posts: One row per blog post, including drafts (published = false)
  - post_tags: Tag names per post
  - post_categories: Category names per post

Taxonomy names are stored trimmed with their display casing; queries compare
them lowercased. The taxonomy tables carry no primary key so that a post's
rows can be deleted and re-inserted inside one transaction.

Index Strategy:
Only the taxonomy join columns are indexed. Filters on posts rely on DuckDB
zonemaps; indexing mutable posts columns turns every UPSERT into a
delete-and-insert inside the index.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// getTableCreationQueries returns the table creation SQL statements
func getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS posts (
			id BIGINT PRIMARY KEY,
			slug TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			excerpt TEXT NOT NULL DEFAULT '',
			author_id BIGINT NOT NULL,
			author_name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			share_count INTEGER NOT NULL DEFAULT 0,
			published BOOLEAN NOT NULL DEFAULT false,
			featured BOOLEAN NOT NULL DEFAULT false
		);`,

		`CREATE TABLE IF NOT EXISTS post_tags (
			post_id BIGINT NOT NULL,
			name TEXT NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS post_categories (
			post_id BIGINT NOT NULL,
			name TEXT NOT NULL
		);`,
	}
}

// createIndexes creates indexes for the candidate queries
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getIndexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}

func getIndexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_post_tags_post ON post_tags(post_id);`,
		`CREATE INDEX IF NOT EXISTS idx_post_categories_post ON post_categories(post_id);`,
	}
}
