// Package main provides the entry point for the research engine MCP
// server.
//
// This server is designed to be spawned as a child process by an MCP
// client and communicates via stdio using the Model Context Protocol. It
// exposes a single tool, research.run, that drives the full Actor-Critic
// reasoning pipeline over a query.
//
// Environment variables:
//   - ANTHROPIC_API_KEY: required, used by the LLM client
//   - RE_CONFIG_FILE: optional path to a YAML/JSON config file overriding defaults
//   - RE_STUB_SOURCE_SITE: optional site name used by the built-in placeholder retriever
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"researchengine/internal/config"
	"researchengine/internal/llm"
	"researchengine/internal/obslog"
	"researchengine/internal/pipeline"
)

func main() {
	cfg, err := config.Load(os.Getenv("RE_CONFIG_FILE"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	baseLogger, err := obslog.NewZapLogger(cfg.Logging.Level, cfg.Logging.JSON)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer baseLogger.Sync()

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		log.Fatal("ANTHROPIC_API_KEY is required")
	}

	client := llm.NewAnthropicClient(
		apiKey,
		cfg.LLM.LowModel,
		cfg.LLM.HighModel,
		cfg.LLM.CacheEntries,
		time.Duration(cfg.LLM.CacheTTLSeconds)*time.Second,
	)

	p := pipeline.New(cfg, client, stubRetriever{})
	handler := NewResearchHandler(p, &zapLogSource{base: baseLogger})

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "research-engine",
		Version: "0.1.0",
	}, nil)

	RegisterResearchTool(mcpServer, handler)
	baseLogger.Info("registered tool: research.run")

	transport := &mcp.StdioTransport{}
	baseLogger.Info("starting research engine MCP server")

	if err := mcpServer.Run(context.Background(), transport); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
