package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/application"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain/lint"
)

// Services are the validators exposed over MCP.
type Services struct {
	ShotLint  *application.ShotLintService
	Sequence  *application.SequenceService
	Engine    *lint.Engine
	History   domain.RunHistory
	Sequences domain.SequenceConfig // defaults for validate_sequence
}

// NewVFXVoxMCPServer creates an MCP server with all vfxvox tools and
// resources registered. root is the directory relative paths are resolved
// against.
func NewVFXVoxMCPServer(root string, svc Services, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"vfxvox",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, root, svc)
	registerResources(s, root, svc)

	return s
}
