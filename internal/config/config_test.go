package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var churnVars = []string{
	"CHURN_PIPELINE_SEED", "CHURN_PIPELINE_TRAIN_RATIO", "CHURN_PIPELINE_WORKERS",
	"CHURN_PIPELINE_TOP_DRIVERS", "CHURN_MODEL_EPOCHS",
	"CHURN_RISK_HIGH", "CHURN_RISK_MEDIUM",
	"CHURN_LOGGING_LEVEL", "CHURN_PATHS_OUTPUT_DIR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range churnVars {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.Pipeline.Seed)
	assert.Equal(t, 0.8, cfg.Pipeline.TrainRatio)
	assert.Equal(t, 1.5, cfg.Pipeline.IQRMultiplier)
	assert.Equal(t, 0.95, cfg.Pipeline.CorrelationThreshold)
	assert.Equal(t, 6, cfg.Pipeline.TopDrivers)
	assert.Equal(t, 400, cfg.Model.Epochs)
	assert.Equal(t, 0.50, cfg.Risk.High)
	assert.Equal(t, 0.35, cfg.Risk.Medium)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "data/out", cfg.Paths.OutputDir)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHURN_PIPELINE_SEED", "7")
	t.Setenv("CHURN_RISK_HIGH", "0.6")
	t.Setenv("CHURN_RISK_MEDIUM", "0.4")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.Pipeline.Seed)
	assert.Equal(t, 0.6, cfg.Risk.High)
	assert.Equal(t, 0.4, cfg.Risk.Medium)
}

func TestLoadFileOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHURN_PIPELINE_SEED", "7")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("pipeline:\n  seed: 99\n  train_ratio: 0.7\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(99), cfg.Pipeline.Seed, "file wins over env")
	assert.Equal(t, 0.7, cfg.Pipeline.TrainRatio)
	assert.Equal(t, 0.50, cfg.Risk.High, "untouched sections keep defaults")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"train ratio out of range", map[string]string{"CHURN_PIPELINE_TRAIN_RATIO": "1.5"}},
		{"negative workers", map[string]string{"CHURN_PIPELINE_WORKERS": "-2"}},
		{"zero top drivers", map[string]string{"CHURN_PIPELINE_TOP_DRIVERS": "0"}},
		{"medium above high", map[string]string{
			"CHURN_RISK_HIGH":   "0.3",
			"CHURN_RISK_MEDIUM": "0.5",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
