// Package mcp exposes the simulator as Model Context Protocol tools.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"excitond/pkg/types"
)

// DefaultBins is the histogram resolution of the lifetime fit.
const DefaultBins = 40

// Service is the part of the manager the tools call.
type Service interface {
	ListPresets() []types.Preset
	Status() types.StatusResponse
	Simulate(ctx context.Context, req types.SimulateRequest) (types.SimulateResponse, error)
	Runs(ctx context.Context, limit int) ([]types.RunRecord, error)
}

// Config holds server configuration.
type Config struct {
	Name    string // defaults to "excitond"
	Version string
	Bins    int // lifetime fit bins, DefaultBins when unset
	Logger  *zerolog.Logger
}

// Server wraps the MCP SDK server around a simulation service.
type Server struct {
	server *sdk.Server
	svc    Service
	bins   int
	log    zerolog.Logger
}

// NewServer creates a server with the excitond tools registered.
func NewServer(svc Service, cfg Config) *Server {
	if cfg.Name == "" {
		cfg.Name = "excitond"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	s := &Server{svc: svc, bins: cfg.Bins, log: zerolog.Nop()}
	if s.bins <= 0 {
		s.bins = DefaultBins
	}
	if cfg.Logger != nil {
		s.log = cfg.Logger.With().Str("component", "mcp").Logger()
	}
	s.server = sdk.NewServer(&sdk.Implementation{Name: cfg.Name, Version: cfg.Version}, nil)
	s.registerTools()
	return s
}

// Run serves MCP over t until the client disconnects or ctx is canceled.
func (s *Server) Run(ctx context.Context, t sdk.Transport) error {
	return s.server.Run(ctx, t)
}

// RunStdio serves MCP over stdin/stdout.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.Run(ctx, &sdk.StdioTransport{})
}
