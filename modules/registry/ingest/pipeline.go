package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/atlashealth/atlas/modules/registry/domain/aggregates/provider"
	"github.com/atlashealth/atlas/modules/registry/domain/entities/reference"
	"github.com/atlashealth/atlas/pkg/composables"
)

type Options struct {
	Logger *logrus.Logger
	// LogEvery controls progress log cadence in rows. Zero disables it.
	LogEvery int
	// KeepAllOutcomes retains every row result on the report, not just
	// failures. Meant for tests and small files.
	KeepAllOutcomes bool
}

// Pipeline drives one NPPES update file through parse, resolve, reconcile
// and apply. Each data row commits or rolls back on its own, so a failed row
// never takes its neighbours down and a re-run of the same file converges to
// all-skipped.
type Pipeline struct {
	providers provider.Repository
	refs      reference.Repository
	logger    *logrus.Logger
	logEvery  int
	keepAll   bool
}

func New(providers provider.Repository, refs reference.Repository, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Pipeline{
		providers: providers,
		refs:      refs,
		logger:    logger,
		logEvery:  opts.LogEvery,
		keepAll:   opts.KeepAllOutcomes,
	}
}

// ApplyFile processes the update file at path. The context must carry a
// database pool. The returned report is valid even when err is non-nil, up
// to the point the run stopped.
func (p *Pipeline) ApplyFile(ctx context.Context, path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open update file")
	}
	defer f.Close()

	report, err := p.Apply(ctx, filepath.Base(path), f)
	if err != nil {
		runsCompleted.WithLabelValues("error").Inc()
		return report, err
	}
	runsCompleted.WithLabelValues("ok").Inc()
	return report, nil
}

func (p *Pipeline) Apply(ctx context.Context, name string, r io.Reader) (*Report, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file header")
	}
	parser, err := NewParser(header)
	if err != nil {
		return nil, errors.Wrap(err, "unusable file header")
	}

	resolver := NewResolver(p.refs)
	executor := NewExecutor(p.providers)
	report := NewReport(name, p.keepAll)
	defer report.Finish()

	log := p.logger.WithFields(logrus.Fields{"file": name, "run_id": report.RunID})
	log.Info("starting update file run")

	for rowNumber := 2; ; rowNumber++ {
		if err := ctx.Err(); err != nil {
			return report, errors.Wrap(err, "run cancelled")
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A structurally broken line fails that row alone; the reader
			// recovers at the next line.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				p.record(report, log, RowResult{Row: rowNumber, Outcome: OutcomeFailed, Err: err})
				continue
			}
			return report, errors.Wrap(err, "failed to read update file")
		}

		res := p.processRow(ctx, parser, resolver, executor, rowNumber, row)
		p.record(report, log, res)

		if p.logEvery > 0 && report.TotalRows%p.logEvery == 0 {
			log.WithField("rows", report.TotalRows).Info("progress")
		}
	}

	report.Finish()
	log.WithFields(logrus.Fields{
		"rows":      report.TotalRows,
		"created":   report.Created,
		"updated":   report.Updated,
		"skipped":   report.Skipped,
		"corrected": report.Corrected,
		"failed":    report.Failed,
		"duration":  report.Duration().String(),
	}).Info("update file run finished")

	return report, nil
}

func (p *Pipeline) processRow(ctx context.Context, parser *Parser, resolver *Resolver, executor *Executor, rowNumber int, row []string) RowResult {
	started := time.Now()
	res := p.applyRow(ctx, parser, resolver, executor, rowNumber, row)
	rowDuration.Observe(time.Since(started).Seconds())
	rowsProcessed.WithLabelValues(string(res.Outcome)).Inc()
	return res
}

func (p *Pipeline) applyRow(ctx context.Context, parser *Parser, resolver *Resolver, executor *Executor, rowNumber int, row []string) RowResult {
	rec, err := parser.ParseRecord(rowNumber, row)
	if err != nil {
		return RowResult{Row: rowNumber, Outcome: OutcomeFailed, Err: err}
	}

	res := RowResult{Row: rowNumber, NPI: rec.NPI}

	// Reference resolution runs on the pool, outside the row transaction: a
	// city created here is a valid shared reference row whether or not the
	// row that needed it goes on to commit.
	resolved, err := resolver.Resolve(ctx, rec)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		current, err := p.providers.GetByNPI(txCtx, rec.NPI)
		if err != nil && !errors.Is(err, provider.ErrNotFound) {
			return errors.Wrap(err, "failed to load current provider state")
		}

		plan := Reconcile(current, resolved)
		res.Corrections = plan.Corrections

		if plan.Empty() {
			res.Outcome = OutcomeSkipped
			return nil
		}
		if err := executor.Apply(txCtx, plan); err != nil {
			return err
		}

		switch {
		case plan.Create:
			res.Outcome = OutcomeCreated
		case len(plan.Corrections) > 0:
			res.Outcome = OutcomeCorrected
		default:
			res.Outcome = OutcomeUpdated
		}
		return nil
	})
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
	}
	return res
}

func (p *Pipeline) record(report *Report, log *logrus.Entry, res RowResult) {
	report.Record(res)
	if res.Outcome == OutcomeFailed {
		log.WithFields(logrus.Fields{
			"row": res.Row,
			"npi": res.NPI,
		}).WithError(res.Err).Warn("row failed")
	}
	for _, c := range res.Corrections {
		log.WithField("npi", res.NPI).Info(c)
	}
}
