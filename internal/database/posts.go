// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/devblog/internal/recommend"
)

// postColumns is the column list scanned by scanPost.
const postColumns = `p.id, p.slug, p.title, p.content, p.excerpt, p.author_id, p.author_name,
	p.created_at, p.updated_at, p.share_count, p.published, p.featured`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (recommend.Post, error) {
	var p recommend.Post
	err := row.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Content, &p.Excerpt, &p.AuthorID, &p.AuthorName,
		&p.CreatedAt, &p.UpdatedAt, &p.ShareCount, &p.Published, &p.Featured,
	)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, err
}

// GetPost returns a post by id regardless of its published state.
func (db *DB) GetPost(ctx context.Context, id int64) (post *recommend.Post, err error) {
	defer func(start time.Time) { observe("get_post", start, err) }(time.Now())

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.id = ?`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrPostNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}

	posts := []recommend.Post{p}
	if err := db.loadTaxonomy(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// GetPublishedExcluding returns every published post except excludeID,
// ordered by id.
func (db *DB) GetPublishedExcluding(ctx context.Context, excludeID int64) (posts []recommend.Post, err error) {
	defer func(start time.Time) { observe("published_excluding", start, err) }(time.Now())

	return db.queryPosts(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		WHERE p.published AND p.id <> ?
		ORDER BY p.id`, excludeID)
}

// GetPublishedByCategory returns published posts sharing at least one of
// categories with the source, ordered by the number of shared categories,
// then newest first. limit <= 0 returns every match.
func (db *DB) GetPublishedByCategory(ctx context.Context, categories []string, excludeID int64, limit int) (posts []recommend.Post, err error) {
	defer func(start time.Time) { observe("published_by_category", start, err) }(time.Now())

	names := normalizedNames(categories)
	if len(names) == 0 {
		return []recommend.Post{}, nil
	}

	args := make([]any, 0, len(names)+2)
	for _, n := range names {
		args = append(args, n)
	}
	args = append(args, excludeID)

	query := `
		WITH shared AS (
			SELECT post_id, COUNT(DISTINCT lower(name)) AS n
			FROM post_categories
			WHERE lower(name) IN (` + placeholders(len(names)) + `)
			GROUP BY post_id
		)
		SELECT ` + postColumns + `
		FROM posts p
		JOIN shared s ON s.post_id = p.id
		WHERE p.published AND p.id <> ?
		ORDER BY s.n DESC, p.created_at DESC, p.id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	return db.queryPosts(ctx, query, args...)
}

// GetPublishedByAuthor returns the author's other published posts, newest
// first. limit <= 0 returns every match.
func (db *DB) GetPublishedByAuthor(ctx context.Context, authorID, excludeID int64, limit int) (posts []recommend.Post, err error) {
	defer func(start time.Time) { observe("published_by_author", start, err) }(time.Now())

	query := `
		SELECT ` + postColumns + `
		FROM posts p
		WHERE p.published AND p.author_id = ? AND p.id <> ?
		ORDER BY p.created_at DESC, p.id`
	args := []any{authorID, excludeID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	return db.queryPosts(ctx, query, args...)
}

// GetPopular returns featured published posts ordered by share count, then
// newest first.
func (db *DB) GetPopular(ctx context.Context, limit int) (posts []recommend.Post, err error) {
	defer func(start time.Time) { observe("popular", start, err) }(time.Now())

	query := `
		SELECT ` + postColumns + `
		FROM posts p
		WHERE p.published AND p.featured
		ORDER BY p.share_count DESC, p.created_at DESC, p.id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	return db.queryPosts(ctx, query, args...)
}

// UpsertPost inserts or replaces a post together with its tags and
// categories. A zero CreatedAt defaults to now and a zero UpdatedAt to
// CreatedAt.
func (db *DB) UpsertPost(ctx context.Context, p *recommend.Post) (err error) {
	defer func(start time.Time) { observe("upsert_post", start, err) }(time.Now())

	if err := validatePost(p); err != nil {
		return err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	p.CreatedAt = p.CreatedAt.UTC().Truncate(time.Microsecond)
	p.UpdatedAt = p.UpdatedAt.UTC().Truncate(time.Microsecond)

	return db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO posts (id, slug, title, content, excerpt, author_id, author_name,
				created_at, updated_at, share_count, published, featured)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				slug = EXCLUDED.slug,
				title = EXCLUDED.title,
				content = EXCLUDED.content,
				excerpt = EXCLUDED.excerpt,
				author_id = EXCLUDED.author_id,
				author_name = EXCLUDED.author_name,
				created_at = EXCLUDED.created_at,
				updated_at = EXCLUDED.updated_at,
				share_count = EXCLUDED.share_count,
				published = EXCLUDED.published,
				featured = EXCLUDED.featured`,
			p.ID, p.Slug, p.Title, p.Content, p.Excerpt, p.AuthorID, p.AuthorName,
			p.CreatedAt, p.UpdatedAt, p.ShareCount, p.Published, p.Featured)
		if err != nil {
			return fmt.Errorf("failed to upsert post %d: %w", p.ID, err)
		}

		if err := replaceNames(ctx, tx, "post_tags", p.ID, p.Tags); err != nil {
			return err
		}
		return replaceNames(ctx, tx, "post_categories", p.ID, p.Categories)
	})
}

// SetPublished changes a post's published flag and bumps updated_at.
func (db *DB) SetPublished(ctx context.Context, id int64, published bool) (err error) {
	defer func(start time.Time) { observe("set_published", start, err) }(time.Now())

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE posts SET published = ?, updated_at = ? WHERE id = ?`,
		published, time.Now().UTC().Truncate(time.Microsecond), id)
	if err != nil {
		return fmt.Errorf("failed to update post %d: %w", id, err)
	}
	return requireRow(res, id)
}

// DeletePost removes a post and its taxonomy rows.
func (db *DB) DeletePost(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { observe("delete_post", start, err) }(time.Now())

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"post_tags", "post_categories"} {
			//nolint:gosec // table names are constants
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE post_id = ?`, id); err != nil {
				return fmt.Errorf("failed to delete %s for post %d: %w", table, id, err)
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete post %d: %w", id, err)
		}
		return requireRow(res, id)
	})
}

// queryPosts runs query and attaches tags and categories to each post.
func (db *DB) queryPosts(ctx context.Context, query string, args ...any) ([]recommend.Post, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer closeWithLog(rows, "rows")

	posts := make([]recommend.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	if err := db.loadTaxonomy(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// loadTaxonomy fills Tags and Categories for posts, sorted by name.
func (db *DB) loadTaxonomy(ctx context.Context, posts []recommend.Post) error {
	if len(posts) == 0 {
		return nil
	}

	index := make(map[int64]int, len(posts))
	args := make([]any, 0, len(posts))
	for i := range posts {
		index[posts[i].ID] = i
		posts[i].Tags = []string{}
		posts[i].Categories = []string{}
		args = append(args, posts[i].ID)
	}

	for _, table := range []string{"post_tags", "post_categories"} {
		//nolint:gosec // table names are constants, values are bound
		query := `SELECT post_id, name FROM ` + table + ` WHERE post_id IN (` + placeholders(len(args)) + `) ORDER BY post_id, name`
		if err := db.scanNames(ctx, query, args, func(postID int64, name string) {
			i, ok := index[postID]
			if !ok {
				return
			}
			if table == "post_tags" {
				posts[i].Tags = append(posts[i].Tags, name)
			} else {
				posts[i].Categories = append(posts[i].Categories, name)
			}
		}); err != nil {
			return fmt.Errorf("failed to load %s: %w", table, err)
		}
	}
	return nil
}

func (db *DB) scanNames(ctx context.Context, query string, args []any, fn func(postID int64, name string)) error {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var (
			postID int64
			name   string
		)
		if err := rows.Scan(&postID, &name); err != nil {
			return err
		}
		fn(postID, name)
	}
	return rows.Err()
}

// replaceNames rewrites the taxonomy rows of one post.
func replaceNames(ctx context.Context, tx *sql.Tx, table string, postID int64, names []string) error {
	//nolint:gosec // table names are constants
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE post_id = ?`, postID); err != nil {
		return fmt.Errorf("failed to clear %s for post %d: %w", table, postID, err)
	}
	for _, name := range dedupeNames(names) {
		//nolint:gosec // table names are constants
		if _, err := tx.ExecContext(ctx, `INSERT INTO `+table+` (post_id, name) VALUES (?, ?)`, postID, name); err != nil {
			return fmt.Errorf("failed to insert %s %q for post %d: %w", table, name, postID, err)
		}
	}
	return nil
}

// dedupeNames trims names and drops blanks and case-insensitive duplicates,
// keeping the first spelling.
func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}

// normalizedNames returns the distinct lowercase names, sorted.
func normalizedNames(names []string) []string {
	out := dedupeNames(names)
	for i := range out {
		out[i] = strings.ToLower(out[i])
	}
	sort.Strings(out)
	return out
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrPostNotFound, id)
	}
	return nil
}

func validatePost(p *recommend.Post) error {
	switch {
	case p == nil:
		return fmt.Errorf("%w: nil post", ErrInvalidPost)
	case p.ID <= 0:
		return fmt.Errorf("%w: id must be positive, got %d", ErrInvalidPost, p.ID)
	case strings.TrimSpace(p.Title) == "":
		return fmt.Errorf("%w: post %d has no title", ErrInvalidPost, p.ID)
	case p.AuthorID <= 0:
		return fmt.Errorf("%w: post %d has no author", ErrInvalidPost, p.ID)
	}
	if p.Slug == "" {
		p.Slug = slugify(p.Title)
	}
	return nil
}

func slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Ensure DB implements the engine's repository interface.
var _ recommend.PostRepository = (*DB)(nil)
