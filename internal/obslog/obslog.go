// Package obslog is the pipeline's structured observability sink. Every
// stage reports through the QueryLogger interface instead of calling
// fmt.Println or the stdlib log package directly, so a query's full
// lifecycle renders as one coherent stream of structured events.
package obslog

import (
	"time"

	"go.uber.org/zap"

	"researchengine/internal/schema"
)

// QueryLogger is the get_query_logger() contract of spec §6: one instance
// per query, scoped to that query's id.
type QueryLogger interface {
	StageStart(stage string)
	StageEnd(stage string, duration time.Duration, retryCount int)
	Fallback(stage, reason string)
	CoVCounts(verified, unverified, contradicted int)
	CriticStatus(status schema.CriticStatus, criticalNodes int)
	GraphSummary(hasCycles bool, logicInconsistencies int)
	MMRScore(url string, position int, score float64)
	FinalConfidence(level schema.ConfidenceLevel)
	Sync()
}

type zapQueryLogger struct {
	queryID string
	logger  *zap.Logger
	summary schema.QueryLog
}

// NewZapLogger builds the base *zap.Logger for the process, honoring the
// level/json switches from config.LoggingConfig.
func NewZapLogger(level string, json bool) (*zap.Logger, error) {
	var cfg zap.Config
	if json {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.Level = lvl
	return cfg.Build()
}

// New scopes a QueryLogger to a single query id.
func New(base *zap.Logger, queryID string) QueryLogger {
	return &zapQueryLogger{
		queryID: queryID,
		logger:  base.With(zap.String("query_id", queryID)),
		summary: schema.QueryLog{QueryID: queryID},
	}
}

func (l *zapQueryLogger) StageStart(stage string) {
	l.summary.Stage = stage
	l.logger.Info("stage_start", zap.String("stage", stage))
}

func (l *zapQueryLogger) StageEnd(stage string, duration time.Duration, retryCount int) {
	l.summary.Duration = duration
	l.summary.RetryCount = retryCount
	l.logger.Info("stage_end",
		zap.String("stage", stage),
		zap.Duration("duration", duration),
		zap.Int("retry_count", retryCount),
	)
}

func (l *zapQueryLogger) Fallback(stage, reason string) {
	l.summary.FallbackUsed = true
	l.logger.Warn("fallback", zap.String("stage", stage), zap.String("reason", reason))
}

func (l *zapQueryLogger) CoVCounts(verified, unverified, contradicted int) {
	l.summary.CoVVerified = verified
	l.summary.CoVUnverified = unverified
	l.summary.CoVContradicted = contradicted
	l.logger.Info("cov_counts",
		zap.Int("verified", verified),
		zap.Int("unverified", unverified),
		zap.Int("contradicted", contradicted),
	)
}

func (l *zapQueryLogger) CriticStatus(status schema.CriticStatus, criticalNodes int) {
	l.summary.CriticStatus = string(status)
	l.summary.CriticalNodes = criticalNodes
	l.logger.Info("critic_status",
		zap.String("status", string(status)),
		zap.Int("critical_nodes", criticalNodes),
	)
}

func (l *zapQueryLogger) GraphSummary(hasCycles bool, logicInconsistencies int) {
	l.summary.HasCycles = hasCycles
	l.summary.LogicInconsistencies = logicInconsistencies
	l.logger.Info("graph_summary",
		zap.Bool("has_cycles", hasCycles),
		zap.Int("logic_inconsistencies", logicInconsistencies),
	)
}

func (l *zapQueryLogger) MMRScore(url string, position int, score float64) {
	l.logger.Debug("mmr_score",
		zap.String("url", url),
		zap.Int("position", position),
		zap.Float64("score", score),
	)
}

func (l *zapQueryLogger) FinalConfidence(level schema.ConfidenceLevel) {
	l.summary.FinalConfidence = string(level)
	l.logger.Info("query_complete",
		zap.String("final_confidence", string(level)),
		zap.String("stage", l.summary.Stage),
		zap.Duration("duration", l.summary.Duration),
		zap.Int("retry_count", l.summary.RetryCount),
		zap.Bool("fallback_used", l.summary.FallbackUsed),
		zap.Int("cov_verified", l.summary.CoVVerified),
		zap.Int("cov_unverified", l.summary.CoVUnverified),
		zap.Int("cov_contradicted", l.summary.CoVContradicted),
		zap.String("critic_status", l.summary.CriticStatus),
		zap.Int("critical_nodes", l.summary.CriticalNodes),
		zap.Bool("has_cycles", l.summary.HasCycles),
		zap.Int("logic_inconsistencies", l.summary.LogicInconsistencies),
	)
}

func (l *zapQueryLogger) Sync() {
	_ = l.logger.Sync()
}
