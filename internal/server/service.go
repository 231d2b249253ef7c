// Package server exposes the resolution engine to developer tooling: a
// JSON-RPC 2.0 tool server on stdio, an optional HTTP facade, and an
// optional watcher that clears the cache when label resources change.
package server

import (
	"context"
	"encoding/json"
	"fmt"

	"label-resolver/internal/resolver"
)

// Service is the transport-independent tool surface. Both the RPC and HTTP
// layers dispatch through it.
type Service struct {
	engine *resolver.Resolver
}

// NewService wraps an engine for serving.
func NewService(engine *resolver.Resolver) *Service {
	return &Service{engine: engine}
}

// Tool describes one callable operation for tool discovery.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ContentBlock is one piece of a tool result.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult carries a tool's output. IsError marks failures that belong to
// the tool call itself (an unconfigured root, for instance) rather than to
// the protocol.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

const (
	toolResolve   = "resolve_label"
	toolBatch     = "resolve_labels_batch"
	toolLanguages = "list_label_languages"
	toolFiles     = "list_label_files"
	toolClear     = "clear_label_cache"
)

// ListTools returns the tool catalog.
func (s *Service) ListTools() []Tool {
	return []Tool{
		{
			Name:        toolResolve,
			Description: "Resolve a single label reference (@FileId:LabelId or legacy @SYS13342) to its text and description.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"reference": map[string]any{"type": "string", "description": "Label reference, e.g. @SYS:AccountNum"},
					"language":  map[string]any{"type": "string", "description": "Language code, defaults to en-US"},
				},
				"required": []string{"reference"},
			},
		},
		{
			Name:        toolBatch,
			Description: "Resolve many label references in one call. Returns the found map plus requested and found counts.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"references": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"language":   map[string]any{"type": "string", "description": "Language code, defaults to en-US"},
				},
				"required": []string{"references"},
			},
		},
		{
			Name:        toolLanguages,
			Description: "List the languages a package/model provides for a label file ID.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"package": map[string]any{"type": "string"},
					"model":   map[string]any{"type": "string"},
					"fileId":  map[string]any{"type": "string"},
				},
				"required": []string{"package", "model", "fileId"},
			},
		},
		{
			Name:        toolFiles,
			Description: "List the label file IDs a package/model provides for a language.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"package":  map[string]any{"type": "string"},
					"model":    map[string]any{"type": "string"},
					"language": map[string]any{"type": "string"},
				},
				"required": []string{"package", "model", "language"},
			},
		},
		{
			Name:        toolClear,
			Description: "Drop every cached label table so the next resolution re-reads from disk.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}

type resolveArgs struct {
	Reference string `json:"reference"`
	Language  string `json:"language"`
}

type batchArgs struct {
	References []string `json:"references"`
	Language   string   `json:"language"`
}

type languagesArgs struct {
	Package string `json:"package"`
	Model   string `json:"model"`
	FileID  string `json:"fileId"`
}

type filesArgs struct {
	Package  string `json:"package"`
	Model    string `json:"model"`
	Language string `json:"language"`
}

// CallTool dispatches one tool invocation. Unknown tools and unparsable
// arguments return an error (a protocol-level failure); engine failures
// come back as IsError results so the caller sees the distinct message.
func (s *Service) CallTool(ctx context.Context, name string, args json.RawMessage) (ToolResult, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case toolResolve:
		var a resolveArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return ToolResult{}, fmt.Errorf("parse %s arguments: %w", name, err)
		}
		res, err := s.engine.Resolve(ctx, a.Reference, a.Language)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(res)

	case toolBatch:
		var a batchArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return ToolResult{}, fmt.Errorf("parse %s arguments: %w", name, err)
		}
		res, err := s.engine.ResolveBatch(ctx, a.References, a.Language)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(res)

	case toolLanguages:
		var a languagesArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return ToolResult{}, fmt.Errorf("parse %s arguments: %w", name, err)
		}
		langs, err := s.engine.Languages(a.Package, a.Model, a.FileID)
		if err != nil {
			return errorResult(err), nil
		}
		if langs == nil {
			langs = []string{}
		}
		return jsonResult(map[string]any{"languages": langs})

	case toolFiles:
		var a filesArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return ToolResult{}, fmt.Errorf("parse %s arguments: %w", name, err)
		}
		ids, err := s.engine.LabelFiles(a.Package, a.Model, a.Language)
		if err != nil {
			return errorResult(err), nil
		}
		if ids == nil {
			ids = []string{}
		}
		return jsonResult(map[string]any{"files": ids})

	case toolClear:
		s.engine.ClearCache()
		return jsonResult(map[string]any{"cleared": true})

	default:
		return ToolResult{}, fmt.Errorf("unknown tool: %s", name)
	}
}

func jsonResult(v any) (ToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return ToolResult{}, fmt.Errorf("encode tool result: %w", err)
	}
	return ToolResult{Content: []ContentBlock{{Type: "text", Text: string(data)}}}, nil
}

func errorResult(err error) ToolResult {
	return ToolResult{
		IsError: true,
		Content: []ContentBlock{{Type: "text", Text: err.Error()}},
	}
}
