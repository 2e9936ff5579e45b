// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

/*
Package logging configures the zerolog logger used across devblog.

Call Init once from main with settings loaded by the config package. Until
then a json logger at info level writes to stderr.

Components derive their own logger instead of using the global helpers:

	logger := logging.WithComponent("related_posts")
	logger.Info().Int64("post_id", id).Msg("cache warmed")

Correlation ids tie the log lines of one operation together:

	ctx = logging.ContextWithNewCorrelationID(ctx)
	l := logging.Ctx(ctx)
	l.Debug().Msg("handling post.updated")

NewSlogLogger bridges to log/slog for libraries that only speak slog, such as
the sutureslog supervisor hook.
*/
package logging
