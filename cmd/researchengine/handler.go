package main

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"researchengine/internal/obslog"
	"researchengine/internal/pipeline"
	"researchengine/internal/schema"
)

// ResearchRequest is the research.run tool's input.
type ResearchRequest struct {
	Query string `json:"query"`
	Mode  string `json:"mode,omitempty"`
}

// ResearchResponse is the research.run tool's output.
type ResearchResponse struct {
	Report          string               `json:"report,omitempty"`
	ConfidenceLevel string               `json:"confidence_level,omitempty"`
	MethodologyNote string               `json:"methodology_note,omitempty"`
	SourcesUsed     []int                `json:"sources_used,omitempty"`
	Questions       []schema.Question    `json:"questions,omitempty"`
	CriticStatus    string               `json:"critic_status,omitempty"`
}

// ResearchHandler exposes Pipeline.Run as a single MCP tool.
type ResearchHandler struct {
	pipeline *pipeline.Pipeline
	baseLog  zapLoggerSource
}

type zapLoggerSource interface {
	Scope(queryID string) obslog.QueryLogger
}

// NewResearchHandler wires a pipeline and logger source behind the
// handler used by RegisterResearchTool.
func NewResearchHandler(p *pipeline.Pipeline, logSource zapLoggerSource) *ResearchHandler {
	return &ResearchHandler{pipeline: p, baseLog: logSource}
}

// Handle implements the research.run tool: run the pipeline over a query
// and mode, returning either clarification questions or a final report.
func (h *ResearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, request ResearchRequest) (*mcp.CallToolResult, *ResearchResponse, error) {
	if request.Query == "" {
		return nil, nil, fmt.Errorf("query is required")
	}

	mode := schema.Mode(request.Mode)
	if mode == "" {
		mode = schema.ModeDiscovery
	}

	queryID := pipeline.NewQueryID()
	logger := h.baseLog.Scope(queryID)
	defer logger.Sync()

	result, err := pipeline.Run(ctx, h.pipeline, logger, request.Query, mode)
	if err != nil {
		return nil, nil, err
	}

	resp := &ResearchResponse{Questions: result.Questions}
	if result.Report != nil {
		resp.Report = result.Report.FinalReport
		resp.ConfidenceLevel = string(result.Report.ConfidenceLevel)
		resp.MethodologyNote = result.Report.MethodologyNote
		resp.SourcesUsed = result.Report.SourcesUsed
	}
	if result.Critique != nil {
		resp.CriticStatus = string(result.Critique.Status)
	}

	return nil, resp, nil
}

// RegisterResearchTool registers the research.run tool on mcpServer.
func RegisterResearchTool(mcpServer *mcp.Server, handler *ResearchHandler) {
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "research.run",
		Description: `Run the Actor-Critic research pipeline over a query.

**Parameters:**
- query (required): the research question
- mode (optional): one of "strict", "discovery", "monitor"; defaults to "discovery"

**Returns:**
- report: the final written report, once the pipeline reaches a verdict
- questions: clarification questions, if the query needs disambiguation before the pipeline can proceed
- confidence_level, critic_status, sources_used, methodology_note: supporting detail on how the report was produced`,
	}, handler.Handle)
}
