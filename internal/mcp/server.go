// Package mcp exposes the checker as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gomcp "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/accrava/secretsweep/internal/collect"
	"github.com/accrava/secretsweep/internal/engine"
	"github.com/accrava/secretsweep/internal/report"
	"github.com/accrava/secretsweep/internal/types"
	"github.com/accrava/secretsweep/pkg/core"
)

// SweepServer wraps the MCP server with the scan configuration.
type SweepServer struct {
	cfg      engine.Config
	server   *server.MCPServer
	handlers map[string]server.ToolHandlerFunc
}

// NewSweepServer creates an MCP server with all tools registered.
func NewSweepServer(cfg engine.Config, version string) *SweepServer {
	s := &SweepServer{
		cfg:      cfg,
		server:   server.NewMCPServer("secretsweep", version),
		handlers: make(map[string]server.ToolHandlerFunc),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server instance.
func (s *SweepServer) MCPServer() *server.MCPServer {
	return s.server
}

func (s *SweepServer) registerTools() {
	s.addTool("keywords",
		gomcp.NewTool("keywords",
			gomcp.WithDescription("List the keyword catalog in scan order"),
		),
		s.handleKeywords,
	)

	s.addTool("check_text",
		gomcp.NewTool("check_text",
			gomcp.WithDescription("Match a piece of text against the keyword catalog"),
			gomcp.WithString("text",
				gomcp.Required(),
				gomcp.Description("Text to check"),
			),
			gomcp.WithString("label",
				gomcp.Description("Source label recorded on each issue"),
			),
		),
		s.handleCheckText,
	)

	s.addTool("check_storage",
		gomcp.NewTool("check_storage",
			gomcp.WithDescription("Scan a storage dump (JSON or YAML with localStorage/sessionStorage maps) and return the report"),
			gomcp.WithString("storage",
				gomcp.Required(),
				gomcp.Description("Storage dump document"),
			),
		),
		s.handleCheckStorage,
	)

	s.addTool("scan_html",
		gomcp.NewTool("scan_html",
			gomcp.WithDescription("Scan the scripts of an HTML document, plus an optional storage dump, and return the report"),
			gomcp.WithString("html",
				gomcp.Required(),
				gomcp.Description("HTML document source"),
			),
			gomcp.WithString("storage",
				gomcp.Description("Optional storage dump document"),
			),
		),
		s.handleScanHTML,
	)
}

func (s *SweepServer) addTool(name string, tool gomcp.Tool, handler server.ToolHandlerFunc) {
	s.handlers[name] = handler
	s.server.AddTool(tool, handler)
}

// handleKeywords returns the catalog as a JSON array.
func (s *SweepServer) handleKeywords(_ context.Context, _ gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	kw := core.New(core.Options{Engine: s.cfg}).Keywords()
	data, err := json.Marshal(kw)
	if err != nil {
		return gomcp.NewToolResultError(fmt.Sprintf("failed to marshal keywords: %v", err)), nil
	}
	return gomcp.NewToolResultText(string(data)), nil
}

// handleCheckText returns the issues found in the text as JSON.
func (s *SweepServer) handleCheckText(_ context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return gomcp.NewToolResultError(err.Error()), nil
	}
	label := req.GetString("label", "text")

	issues := core.New(core.Options{Engine: s.cfg}).CheckText(text, label)
	if issues == nil {
		issues = []types.Issue{}
	}
	data, err := json.Marshal(issues)
	if err != nil {
		return gomcp.NewToolResultError(fmt.Sprintf("failed to marshal issues: %v", err)), nil
	}
	return gomcp.NewToolResultText(string(data)), nil
}

// handleCheckStorage returns the rendered report for a storage dump.
func (s *SweepServer) handleCheckStorage(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	dump, err := req.RequireString("storage")
	if err != nil {
		return gomcp.NewToolResultError(err.Error()), nil
	}
	st, err := collect.ParseStorage(strings.NewReader(dump))
	if err != nil {
		return gomcp.NewToolResultError(err.Error()), nil
	}
	res := core.New(core.Options{Engine: s.cfg, Storage: collect.StorageCollector{Storage: st}}).CheckStorage(ctx)
	return gomcp.NewToolResultText(report.Render(res)), nil
}

// handleScanHTML returns the rendered report for an HTML document.
func (s *SweepServer) handleScanHTML(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	doc, err := req.RequireString("html")
	if err != nil {
		return gomcp.NewToolResultError(err.Error()), nil
	}
	opts := core.Options{
		Engine:  s.cfg,
		Scripts: collect.HTMLDocument{Reader: strings.NewReader(doc)},
	}
	if dump := req.GetString("storage", ""); dump != "" {
		st, err := collect.ParseStorage(strings.NewReader(dump))
		if err != nil {
			return gomcp.NewToolResultError(err.Error()), nil
		}
		opts.Storage = collect.StorageCollector{Storage: st}
	}
	out := core.New(opts).Run(ctx)
	if len(out.Errors) > 0 {
		return gomcp.NewToolResultError(out.Errors[0].Error()), nil
	}
	return gomcp.NewToolResultText(out.Report), nil
}
