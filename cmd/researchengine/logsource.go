package main

import (
	"go.uber.org/zap"

	"researchengine/internal/obslog"
)

// zapLogSource scopes a fresh obslog.QueryLogger to each query id from a
// single process-lifetime zap.Logger.
type zapLogSource struct {
	base *zap.Logger
}

func (s *zapLogSource) Scope(queryID string) obslog.QueryLogger {
	return obslog.New(s.base, queryID)
}
