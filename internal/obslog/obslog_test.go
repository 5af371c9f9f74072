package obslog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"researchengine/internal/schema"
)

func TestQueryLogger_RecordsSummaryFields(t *testing.T) {
	base := zaptest.NewLogger(t)
	ql := New(base, "q-1")

	ql.StageStart("analyst")
	ql.StageEnd("analyst", 50*time.Millisecond, 1)
	ql.Fallback("sourcetier", "strict produced zero sources")
	ql.CoVCounts(3, 1, 0)
	ql.CriticStatus(schema.StatusWarn, 2)
	ql.GraphSummary(true, 1)
	ql.MMRScore("https://example.com/a", 0, 0.92)
	ql.FinalConfidence(schema.ConfidenceLevelMedium)
	ql.Sync()

	zl, ok := ql.(*zapQueryLogger)
	require.True(t, ok)
	assert.True(t, zl.summary.FallbackUsed)
	assert.Equal(t, 3, zl.summary.CoVVerified)
	assert.Equal(t, string(schema.StatusWarn), zl.summary.CriticStatus)
	assert.True(t, zl.summary.HasCycles)
	assert.Equal(t, string(schema.ConfidenceLevelMedium), zl.summary.FinalConfidence)
}

func TestNewZapLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	logger, err := NewZapLogger("not-a-level", true)
	require.NoError(t, err)
	require.NotNil(t, logger)
	_ = logger.Sync()
}
