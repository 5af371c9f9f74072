package main

import (
	"context"
	"os"

	"researchengine/internal/schema"
)

// stubRetriever is a deterministic placeholder for the crawler/search
// collaborator the spec keeps external to this module. It exists so the
// binary has a runnable default without pulling in a real web search or
// vector store dependency; production deployments wire a real Retriever
// in its place.
type stubRetriever struct{}

func (stubRetriever) Retrieve(ctx context.Context, query string, mode schema.Mode) ([]schema.SourceItem, error) {
	site := os.Getenv("RE_STUB_SOURCE_SITE")
	if site == "" {
		site = "example.com"
	}
	return []schema.SourceItem{
		{
			URL:         "https://" + site + "/search?q=" + query,
			Title:       "Placeholder result for: " + query,
			Description: "No retrieval backend configured; wire a real Retriever for production use.",
			Site:        site,
		},
	}, nil
}
