package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnctl/internal/config"
	"churnctl/internal/generate"
	"churnctl/internal/risk"
	"churnctl/pkg/contracts/domain"
)

func testConfig() *config.Config {
	return &config.Config{
		Pipeline: config.PipelineConfig{
			Seed:                 42,
			TrainRatio:           0.8,
			IQRMultiplier:        1.5,
			CorrelationThreshold: 0.95,
			Workers:              2,
			TopDrivers:           6,
		},
		Model: config.ModelConfig{
			LearningRate: 0.1,
			Epochs:       120,
			L2:           0.001,
		},
		Risk: risk.Thresholds{High: 0.50, Medium: 0.35},
	}
}

func TestNewRejectsInvalidConfiguration(t *testing.T) {
	cfg := testConfig()
	cfg.Risk = risk.Thresholds{High: 0.2, Medium: 0.8}

	_, err := New(cfg, nil)
	require.Error(t, err)

	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, ErrorTypeConfiguration, runErr.Type)
}

func TestNewRejectsBadSplitRatio(t *testing.T) {
	cfg := testConfig()
	cfg.Pipeline.TrainRatio = 1.2

	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestRunEndToEnd(t *testing.T) {
	raw := generate.New(generate.DefaultConfig(42)).Generate(1200)

	p, err := New(testConfig(), nil)
	require.NoError(t, err)

	result, err := p.Run(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, result)

	// Every stage ran and completed.
	require.Equal(t, RunStatusCompleted, result.State.Status)
	for _, id := range []string{
		StageIDValidate, StageIDRepair, StageIDWinsorize, StageIDSplit,
		StageIDFit, StageIDDerive, StageIDTrain, StageIDScore,
	} {
		st := result.State.Stage(id)
		require.NotNil(t, st, "stage %s missing", id)
		assert.Equal(t, RunStatusCompleted, st.Status, "stage %s", id)
	}

	// Record accounting holds through the run.
	assert.Equal(t, len(raw), result.Report.InputRecords)
	assert.Equal(t, len(result.Clean), result.Report.RetainedRecords)
	assert.Equal(t, len(raw),
		len(result.Clean)+result.Report.ExcludedUnrecoverable+result.Report.DuplicateDropped)
	assert.Equal(t, len(result.Clean), result.TrainCount+result.EvalCount)

	// The raw batch is defective by construction; the census and the
	// report must both notice.
	assert.NotEmpty(t, result.DefectCensus)
	assert.Positive(t, result.Report.TotalRepairs())

	// One assessment per clean record, each fully populated.
	require.Len(t, result.Assessments, len(result.Clean))
	for _, a := range result.Assessments {
		assert.NotEmpty(t, a.CustomerID)
		assert.False(t, math.IsNaN(a.Probability))
		assert.GreaterOrEqual(t, a.Probability, 0.0)
		assert.LessOrEqual(t, a.Probability, 1.0)
		assert.Contains(t, []domain.RiskTier{domain.RiskHigh, domain.RiskMedium, domain.RiskLow}, a.Tier)
		assert.NotEmpty(t, a.TopDrivers)
		assert.LessOrEqual(t, len(a.TopDrivers), 6)
	}

	assert.NotEmpty(t, result.Coefficients)
	assert.NotEmpty(t, result.Stats.Columns)
}

func TestRunIsDeterministic(t *testing.T) {
	raw := generate.New(generate.DefaultConfig(7)).Generate(600)

	p1, err := New(testConfig(), nil)
	require.NoError(t, err)
	p2, err := New(testConfig(), nil)
	require.NoError(t, err)

	r1, err := p1.Run(context.Background(), raw)
	require.NoError(t, err)
	r2, err := p2.Run(context.Background(), raw)
	require.NoError(t, err)

	require.Len(t, r2.Assessments, len(r1.Assessments))
	for i := range r1.Assessments {
		assert.Equal(t, r1.Assessments[i].CustomerID, r2.Assessments[i].CustomerID)
		assert.Equal(t, r1.Assessments[i].Probability, r2.Assessments[i].Probability)
		assert.Equal(t, r1.Assessments[i].Tier, r2.Assessments[i].Tier)
	}
	assert.Equal(t, r1.Coefficients, r2.Coefficients)
}

func TestRunCancelledContext(t *testing.T) {
	raw := generate.New(generate.DefaultConfig(42)).Generate(100)

	p, err := New(testConfig(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.Run(ctx, raw)
	require.Error(t, err)

	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, ErrorTypeCancellation, runErr.Type)
	assert.Equal(t, RunStatusCancelled, result.State.Status)
}

func TestRunEmptyBatchFails(t *testing.T) {
	p, err := New(testConfig(), nil)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), nil)
	assert.Error(t, err)
}
