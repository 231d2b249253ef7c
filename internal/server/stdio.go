package server

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"
	"go.lsp.dev/jsonrpc2"
)

// protocolVersion is the tool-protocol revision reported to clients during
// the initialize handshake.
const protocolVersion = "2024-11-05"

// RPC serves the tool surface as JSON-RPC 2.0 over stdin/stdout. Logs go to
// stderr so the protocol stream stays clean.
type RPC struct {
	service *Service
	cancel  context.CancelFunc
}

// NewRPC creates the stdio transport for a service.
func NewRPC(service *Service) *RPC {
	return &RPC{service: service}
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      serverInfo     `json:"serverInfo"`
}

type listToolsResult struct {
	Tools []Tool `json:"tools"`
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Run speaks the protocol until the client disconnects, the client sends
// exit, or ctx is cancelled.
func (r *RPC) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	r.cancel = cancel

	stream := jsonrpc2.NewStream(stdrwc{})
	conn := jsonrpc2.NewConn(stream)
	conn.Go(ctx, r.handler())

	log.Info().Msg("Label tool server listening on stdio")

	select {
	case <-ctx.Done():
		return conn.Close()
	case <-conn.Done():
		return nil
	}
}

func (r *RPC) handler() jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		log.Debug().Str("method", req.Method()).Msg("RPC request")

		switch req.Method() {
		case "initialize":
			return reply(ctx, initializeResult{
				ProtocolVersion: protocolVersion,
				Capabilities:    map[string]any{"tools": map[string]any{}},
				ServerInfo:      serverInfo{Name: "label-resolver", Version: "0.1.0"},
			}, nil)
		case "notifications/initialized":
			return reply(ctx, nil, nil)
		case "ping":
			return reply(ctx, map[string]any{}, nil)
		case "tools/list":
			return reply(ctx, listToolsResult{Tools: r.service.ListTools()}, nil)
		case "tools/call":
			return r.handleToolCall(ctx, reply, req)
		case "shutdown":
			return reply(ctx, nil, nil)
		case "exit":
			err := reply(ctx, nil, nil)
			r.cancel()
			return err
		default:
			return reply(ctx, nil, jsonrpc2.ErrMethodNotFound)
		}
	}
}

func (r *RPC) handleToolCall(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params toolCallParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, &jsonrpc2.Error{
			Code:    jsonrpc2.InvalidParams,
			Message: "failed to parse tools/call params",
		})
	}

	result, err := r.service.CallTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return reply(ctx, nil, &jsonrpc2.Error{
			Code:    jsonrpc2.InvalidParams,
			Message: err.Error(),
		})
	}
	return reply(ctx, result, nil)
}

// stdrwc adapts stdin/stdout to io.ReadWriteCloser for the RPC stream.
type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
