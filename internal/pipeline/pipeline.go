package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"github.com/google/uuid"

	"churnctl/internal/config"
	"churnctl/internal/dataset"
	"churnctl/internal/features"
	"churnctl/internal/model"
	"churnctl/internal/repair"
	"churnctl/internal/risk"
	"churnctl/internal/schema"
	"churnctl/pkg/contracts/domain"
)

// Pipeline wires the stages of a batch run. Build one per configuration;
// it is safe to reuse across runs.
type Pipeline struct {
	cfg        *config.Config
	logger     *slog.Logger
	validator  *schema.Validator
	repairer   *repair.Repairer
	winsorizer *repair.Winsorizer
	splitter   *dataset.Splitter
	trainer    model.Trainer
	classifier *risk.Classifier
	workers    int
}

// Result carries everything a run produced, ready for export.
type Result struct {
	State        *RunState
	DefectCensus map[string]int
	Clean        []domain.CleanRecord
	Report       *domain.RepairReport
	Stats        *features.FittedStatistics
	Coefficients map[string]float64
	Assessments  []domain.RiskAssessment
	TrainCount   int
	EvalCount    int
}

// New builds a Pipeline from validated configuration. All configuration
// problems surface here, before any record is touched.
func New(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, NewConfigurationError("nil configuration", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	splitter, err := dataset.NewSplitter(cfg.Pipeline.TrainRatio, cfg.Pipeline.Seed)
	if err != nil {
		return nil, NewConfigurationError("build splitter", err)
	}
	classifier, err := risk.NewClassifier(cfg.Risk, cfg.Pipeline.TopDrivers)
	if err != nil {
		return nil, NewConfigurationError("build classifier", err)
	}
	if cfg.Pipeline.IQRMultiplier <= 0 {
		return nil, NewConfigurationError(
			fmt.Sprintf("iqr multiplier must be positive, got %v", cfg.Pipeline.IQRMultiplier), nil)
	}

	workers := cfg.Pipeline.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	trainer := model.NewLogisticTrainer(model.LogisticConfig{
		LearningRate: cfg.Model.LearningRate,
		Epochs:       cfg.Model.Epochs,
		L2:           cfg.Model.L2,
	}, logger)

	return &Pipeline{
		cfg:        cfg,
		logger:     logger,
		validator:  schema.NewValidator(),
		repairer:   repair.NewRepairer(logger),
		winsorizer: repair.NewWinsorizer(cfg.Pipeline.IQRMultiplier, logger),
		splitter:   splitter,
		trainer:    trainer,
		classifier: classifier,
		workers:    workers,
	}, nil
}

// Run executes every stage against the raw records. The context is
// checked between stages; a cancelled context stops the run with a
// cancellation error and a partial state.
func (p *Pipeline) Run(ctx context.Context, raw []domain.RawRecord) (*Result, error) {
	runID := uuid.New().String()
	state := newRunState(runID)
	result := &Result{State: state}
	logger := p.logger.With(slog.String("run_id", runID))

	logger.InfoContext(ctx, "pipeline run started",
		slog.Int("records", len(raw)),
		slog.Int64("seed", p.cfg.Pipeline.Seed))

	// validate: census of raw defects, for the run summary only. The
	// repair stage re-derives what it needs record by record.
	_, err := p.runStage(ctx, state, StageIDValidate, func(st *StageState) error {
		c := p.defectCensus(raw)
		st.Metadata["records"] = len(raw)
		st.Metadata["violations"] = censusTotal(c)
		result.DefectCensus = c
		return nil
	})
	if err != nil {
		return result, err
	}

	// repair
	_, err = p.runStage(ctx, state, StageIDRepair, func(st *StageState) error {
		clean, report, rerr := p.repairer.Repair(ctx, raw)
		if rerr != nil {
			return rerr
		}
		report.RunID = runID
		result.Clean = clean
		result.Report = report
		st.Metadata["clean_records"] = len(clean)
		st.Metadata["excluded"] = report.ExcludedUnrecoverable
		st.Metadata["repairs"] = report.TotalRepairs()
		return nil
	})
	if err != nil {
		return result, err
	}
	if len(result.Clean) == 0 {
		err = NewExecutionError(StageIDRepair, fmt.Errorf("no recoverable records"))
		state.fail(err)
		return result, err
	}

	// winsorize
	_, err = p.runStage(ctx, state, StageIDWinsorize, func(st *StageState) error {
		result.Clean = p.winsorizer.Treat(ctx, result.Clean, result.Report)
		st.Metadata["clamped"] = result.Report.Winsorized
		return nil
	})
	if err != nil {
		return result, err
	}

	// split
	var train, eval []domain.CleanRecord
	_, err = p.runStage(ctx, state, StageIDSplit, func(st *StageState) error {
		train, eval = p.splitter.Split(result.Clean)
		result.TrainCount = len(train)
		result.EvalCount = len(eval)
		st.Metadata["train"] = len(train)
		st.Metadata["eval"] = len(eval)
		st.Metadata["train_churn_rate"] = dataset.ChurnRate(train)
		st.Metadata["eval_churn_rate"] = dataset.ChurnRate(eval)
		return nil
	})
	if err != nil {
		return result, err
	}

	// fit statistics on the training partition only
	_, err = p.runStage(ctx, state, StageIDFit, func(st *StageState) error {
		stats, ferr := features.Fit(ctx, train, features.FitOptions{
			CorrelationThreshold: p.cfg.Pipeline.CorrelationThreshold,
		}, logger)
		if ferr != nil {
			return ferr
		}
		result.Stats = stats
		st.Metadata["columns"] = len(stats.Columns)
		st.Metadata["excluded"] = stats.Excluded
		return nil
	})
	if err != nil {
		return result, err
	}

	// derive features for every clean record with the fitted statistics
	deriver, derr := features.NewDeriver(result.Stats, p.workers)
	if derr != nil {
		err = NewExecutionError(StageIDDerive, derr)
		state.fail(err)
		return result, err
	}
	var trainVec, allVec []features.Vector
	_, err = p.runStage(ctx, state, StageIDDerive, func(st *StageState) error {
		var verr error
		trainVec, verr = deriver.DeriveAll(ctx, train)
		if verr != nil {
			return verr
		}
		allVec, verr = deriver.DeriveAll(ctx, result.Clean)
		if verr != nil {
			return verr
		}
		st.Metadata["vectors"] = len(allVec)
		return nil
	})
	if err != nil {
		return result, err
	}

	// train
	var scorer model.Scorer
	_, err = p.runStage(ctx, state, StageIDTrain, func(st *StageState) error {
		x, y, merr := features.Matrix(trainVec, train)
		if merr != nil {
			return merr
		}
		scorer, merr = p.trainer.Train(ctx, result.Stats.Columns, x, y)
		if merr != nil {
			return merr
		}
		result.Coefficients = scorer.Coefficients()
		return nil
	})
	if err != nil {
		return result, err
	}

	// score and classify every clean record
	_, err = p.runStage(ctx, state, StageIDScore, func(st *StageState) error {
		assessments := make([]domain.RiskAssessment, 0, len(allVec))
		tiers := make(map[domain.RiskTier]int)
		for i, vec := range allVec {
			prob, attributions := scorer.Score(vec.Values)
			a := p.classifier.Classify(result.Clean[i], prob, attributions)
			tiers[a.Tier]++
			assessments = append(assessments, a)
		}
		result.Assessments = assessments
		st.Metadata["assessed"] = len(assessments)
		st.Metadata["high"] = tiers[domain.RiskHigh]
		st.Metadata["medium"] = tiers[domain.RiskMedium]
		st.Metadata["low"] = tiers[domain.RiskLow]
		return nil
	})
	if err != nil {
		return result, err
	}

	state.complete()
	logger.InfoContext(ctx, "pipeline run completed",
		slog.Int("assessed", len(result.Assessments)),
		slog.Duration("duration", state.EndTime.Sub(state.StartTime)))
	return result, nil
}

// runStage wraps a stage body with context checks, timing and logging.
func (p *Pipeline) runStage(ctx context.Context, state *RunState, id string, body func(*StageState) error) (*StageState, error) {
	if err := ctx.Err(); err != nil {
		cerr := NewCancellationError(id, err)
		state.cancel(cerr)
		return nil, cerr
	}

	st := state.beginStage(id)
	p.logger.InfoContext(ctx, "stage started", slog.String("stage", id))
	if err := body(st); err != nil {
		eerr := NewExecutionError(id, err)
		st.fail(eerr)
		state.fail(eerr)
		p.logger.ErrorContext(ctx, "stage failed",
			slog.String("stage", id),
			slog.String("error", err.Error()))
		return st, eerr
	}
	st.complete()
	p.logger.InfoContext(ctx, "stage completed",
		slog.String("stage", id),
		slog.Duration("duration", st.Duration))
	return st, nil
}

// defectCensus counts schema violations in the raw batch by tag.
func (p *Pipeline) defectCensus(raw []domain.RawRecord) map[string]int {
	census := make(map[string]int)
	for _, r := range raw {
		for _, v := range p.validator.Validate(r) {
			census[v.Tag]++
		}
	}
	if len(census) > 0 {
		tags := make([]string, 0, len(census))
		for tag := range census {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		for _, tag := range tags {
			p.logger.Debug("schema violations",
				slog.String("tag", tag),
				slog.Int("count", census[tag]))
		}
	}
	return census
}

func censusTotal(census map[string]int) int {
	total := 0
	for _, n := range census {
		total += n
	}
	return total
}
