// Package automation runs scheduled read-only scans over all tenants and
// records their outcomes. Rules never mutate domain resources; everything a
// rule finds is surfaced through run records and logs.
package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careops/careops/internal/domain/audit"
)

// maxSampleIDs bounds the metadata payload of a run record. A scan may match
// thousands of rows; the record keeps a count plus a small sample.
const maxSampleIDs = 10

// Result is what a rule reports after a successful scan.
type Result struct {
	AffectedCount int
	SampleIDs     []uuid.UUID
	Extra         map[string]interface{}
}

// Rule is one scheduled scan. Run must be read-only with respect to domain
// resources and safe to call repeatedly; consecutive runs over unchanged data
// report the same count.
type Rule interface {
	Name() string
	Cadence() time.Duration
	Run(ctx context.Context) (Result, error)
}

// Runner owns the rule set and the ticker loops. Every execution, scheduled
// or manual, produces exactly one run record.
type Runner struct {
	rules    []Rule
	recorder audit.RunRecorder
	logger   zerolog.Logger
}

func NewRunner(recorder audit.RunRecorder, logger zerolog.Logger, rules ...Rule) *Runner {
	return &Runner{rules: rules, recorder: recorder, logger: logger}
}

// Start launches one ticker goroutine per rule and returns immediately. The
// loops stop when ctx is cancelled. Rules do not fire at startup; the first
// execution happens after one full cadence.
func (r *Runner) Start(ctx context.Context) {
	for _, rule := range r.rules {
		go r.loop(ctx, rule)
	}
}

func (r *Runner) loop(ctx context.Context, rule Rule) {
	ticker := time.NewTicker(rule.Cadence())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx, rule)
		}
	}
}

// RunByName executes a single rule immediately. Used by the automation CLI
// command so external schedulers can drive rules without the ticker loops.
func (r *Runner) RunByName(ctx context.Context, name string) error {
	for _, rule := range r.rules {
		if rule.Name() == name {
			return r.RunOnce(ctx, rule)
		}
	}
	return fmt.Errorf("unknown automation rule %q", name)
}

// Names lists the registered rule names.
func (r *Runner) Names() []string {
	out := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule.Name())
	}
	return out
}

// RunOnce executes rule and records the outcome. A failed scan still gets a
// run record, with status failed and the error in metadata.
func (r *Runner) RunOnce(ctx context.Context, rule Rule) error {
	started := time.Now()
	res, runErr := rule.Run(ctx)

	rec := audit.RunRecord{
		RuleName:      rule.Name(),
		Status:        audit.RunCompleted,
		AffectedCount: res.AffectedCount,
		Metadata:      map[string]interface{}{"duration_ms": time.Since(started).Milliseconds()},
	}
	if runErr != nil {
		rec.Status = audit.RunFailed
		rec.AffectedCount = 0
		rec.Metadata["error"] = runErr.Error()
	} else {
		if ids := sampleIDs(res.SampleIDs); len(ids) > 0 {
			rec.Metadata["sample_ids"] = ids
		}
		for k, v := range res.Extra {
			rec.Metadata[k] = v
		}
	}

	if err := r.recorder.RecordRun(ctx, rec); err != nil {
		r.logger.Error().Err(err).Str("rule", rule.Name()).Msg("automation run record write failed")
		return err
	}

	evt := r.logger.Info()
	if runErr != nil {
		evt = r.logger.Error().Err(runErr)
	}
	evt.Str("rule", rule.Name()).
		Str("status", rec.Status).
		Int("affected", rec.AffectedCount).
		Msg("automation rule ran")
	return runErr
}

func sampleIDs(ids []uuid.UUID) []string {
	if len(ids) > maxSampleIDs {
		ids = ids[:maxSampleIDs]
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
