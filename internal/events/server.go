// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package events

import (
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/rs/zerolog"
)

// randomPort asks nats-server to pick a free port.
const randomPort = -1

// EmbeddedServer runs a core NATS server inside the process for
// deployments without an external broker.
type EmbeddedServer struct {
	server    *server.Server
	clientURL string
	logger    zerolog.Logger
}

// NewEmbeddedServer starts a NATS server on 127.0.0.1:port. Port 0 picks a
// free port; ClientURL reports the one chosen.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEmbeddedServer(port int, logger zerolog.Logger) (*EmbeddedServer, error) {
	if port == 0 {
		port = randomPort
	}

	opts := &server.Options{
		ServerName: "devblog-events",
		Host:       "127.0.0.1",
		Port:       port,
		NoLog:      true,
		NoSigs:     true,
		MaxPayload: 1024 * 1024, // events are tiny
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within timeout")
	}

	s := &EmbeddedServer{
		server:    ns,
		clientURL: ns.ClientURL(),
		logger:    logger.With().Str("component", "nats-server").Logger(),
	}
	s.logger.Info().Str("url", s.clientURL).Msg("Embedded NATS server started")
	return s, nil
}

// ClientURL returns the connection URL for clients.
func (s *EmbeddedServer) ClientURL() string {
	return s.clientURL
}

// IsRunning reports whether the server accepts connections.
func (s *EmbeddedServer) IsRunning() bool {
	return s.server.Running()
}

// Shutdown stops the server and waits for it to exit.
func (s *EmbeddedServer) Shutdown() {
	s.server.Shutdown()
	s.server.WaitForShutdown()
	s.logger.Info().Msg("Embedded NATS server stopped")
}
