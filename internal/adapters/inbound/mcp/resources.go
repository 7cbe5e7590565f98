package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

const historyURI = "vfxvox://history"

// registerResources registers all vfxvox MCP resources on the given server.
func registerResources(s *server.MCPServer, root string, svc Services) {
	// 1. vfxvox://history - runs recorded for the server root
	s.AddResource(
		mcplib.NewResource(
			historyURI,
			"Run History",
			mcplib.WithResourceDescription("Validation runs recorded with --record for the server root"),
			mcplib.WithMIMEType("application/json"),
		),
		handleHistoryResource(root, svc),
	)

	// 2. vfxvox://history/{path} - runs recorded for another directory
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			historyURI+"/{path}",
			"Run History for Path",
			mcplib.WithTemplateDescription("Validation runs recorded for a directory relative to the server root"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleHistoryResource(root, svc),
	)
}

func handleHistoryResource(root string, svc Services) func(context.Context, mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		uri := request.Params.URI
		dir := strings.TrimPrefix(strings.TrimPrefix(uri, historyURI), "/")

		entries, err := svc.History.Load(resolve(root, dir))
		if err != nil {
			return nil, fmt.Errorf("loading history: %w", err)
		}
		if entries == nil {
			entries = []domain.RunEntry{}
		}

		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling history: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
