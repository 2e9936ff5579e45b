// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/tomtom215/devblog/internal/database"
	"github.com/tomtom215/devblog/internal/logging"
	"github.com/tomtom215/devblog/internal/recommend"
	"github.com/tomtom215/devblog/internal/validation"
)

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Load posts from a YAML file",
	Long: `Creates or replaces posts from a YAML file and invalidates their cached
related posts. Example file:

  posts:
    - id: 1
      title: Goroutines and channels
      content: ...
      author_id: 7
      author_name: Tom
      categories: [Go]
      tags: [concurrency, channels]
      created_at: 2026-03-01T09:00:00Z
      published: true`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

// postFile is the import file layout.
type postFile struct {
	Posts []postRecord `koanf:"posts" validate:"required,min=1,dive"`
}

type postRecord struct {
	ID         int64     `koanf:"id" validate:"gte=1"`
	Slug       string    `koanf:"slug"`
	Title      string    `koanf:"title" validate:"required"`
	Content    string    `koanf:"content"`
	Excerpt    string    `koanf:"excerpt"`
	AuthorID   int64     `koanf:"author_id" validate:"gte=1"`
	AuthorName string    `koanf:"author_name"`
	Categories []string  `koanf:"categories"`
	Tags       []string  `koanf:"tags"`
	CreatedAt  time.Time `koanf:"created_at"`
	UpdatedAt  time.Time `koanf:"updated_at"`
	ShareCount int       `koanf:"share_count" validate:"gte=0"`
	Published  bool      `koanf:"published"`
	Featured   bool      `koanf:"featured"`
}

func (r *postRecord) post() *recommend.Post {
	return &recommend.Post{
		ID:         r.ID,
		Slug:       r.Slug,
		Title:      r.Title,
		Content:    r.Content,
		Excerpt:    r.Excerpt,
		AuthorID:   r.AuthorID,
		AuthorName: r.AuthorName,
		Categories: r.Categories,
		Tags:       r.Tags,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		ShareCount: r.ShareCount,
		Published:  r.Published,
		Featured:   r.Featured,
	}
}

// loadPostFile parses and validates an import file. Post ids must be
// unique within the file.
func loadPostFile(path string) ([]*recommend.Post, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var pf postFile
	if err := k.UnmarshalWithConf("", &pf, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := validation.ValidateStruct(&pf); err != nil {
		return nil, fmt.Errorf("invalid import file %s: %w", path, err)
	}

	seen := make(map[int64]struct{}, len(pf.Posts))
	posts := make([]*recommend.Post, 0, len(pf.Posts))
	for i := range pf.Posts {
		r := &pf.Posts[i]
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("invalid import file %s: duplicate post id %d", path, r.ID)
		}
		seen[r.ID] = struct{}{}
		posts = append(posts, r.post())
	}
	return posts, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	posts, err := loadPostFile(args[0])
	if err != nil {
		return err
	}

	a, notifier, err := setupForChanges()
	if err != nil {
		return err
	}
	defer a.close()
	defer notifier.Close()

	ctx := logging.ContextWithNewCorrelationID(cmd.Context())
	for _, p := range posts {
		wasPublished, err := isPublished(ctx, a, p.ID)
		if err != nil {
			return err
		}
		if err := a.db.UpsertPost(ctx, p); err != nil {
			return fmt.Errorf("failed to import post %d: %w", p.ID, err)
		}

		notify := notifier.PostUpdated
		if wasPublished && !p.Published {
			notify = notifier.PostUnpublished
		}
		if err := notify(ctx, p.ID); err != nil {
			a.logger.Warn().Err(err).Int64("post_id", p.ID).Msg("failed to invalidate related posts after import")
		}
	}

	a.logger.Info().Int("posts", len(posts)).Str("file", args[0]).Msg("imported posts")
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d posts\n", len(posts))
	return nil
}

// isPublished reports whether post id exists and is published.
func isPublished(ctx context.Context, a *app, id int64) (bool, error) {
	existing, err := a.db.GetPost(ctx, id)
	if errors.Is(err, database.ErrPostNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load post %d: %w", id, err)
	}
	return existing.Published, nil
}
