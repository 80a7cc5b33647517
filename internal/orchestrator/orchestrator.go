package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/badno/metaops/internal/output"
	"github.com/badno/metaops/internal/state"
	"github.com/badno/metaops/pkg/models"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// ClearPolicy decides which pending edits are dropped after a save
type ClearPolicy string

const (
	// ClearAll clears the store only when every update succeeded
	ClearAll ClearPolicy = "all"
	// ClearSucceeded drops the cells of each product whose update succeeded
	ClearSucceeded ClearPolicy = "succeeded"
)

// ParseClearPolicy validates a policy name; "" means ClearAll
func ParseClearPolicy(s string) (ClearPolicy, error) {
	switch ClearPolicy(strings.ToLower(s)) {
	case "", ClearAll:
		return ClearAll, nil
	case ClearSucceeded:
		return ClearSucceeded, nil
	}
	return "", fmt.Errorf("unknown clear policy: %s (use all or succeeded)", s)
}

// Progress reports how many per-product updates have been issued
type Progress struct {
	Completed int
	Total     int
}

// Invalidator drops cached reads after a write
type Invalidator interface {
	Invalidate(reason string)
}

// Recorder stores an audit record of a save run
type Recorder interface {
	RecordSave(ctx context.Context, run models.SaveRun) error
}

// SaveOptions configures a save
type SaveOptions struct {
	ClearPolicy ClearPolicy
	OnProgress  func(Progress)
}

// SaveResult is the outcome of a save
type SaveResult struct {
	models.MutationResult
	RunID         string
	Changes       int      // Writable pending cells at start
	Updates       int      // Per-product updates built from them
	Completed     int      // Updates issued before finishing or cancelling
	Cancelled     bool     // Stopped early by Cancel or context
	Cleared       int      // Cells removed from the store afterwards
	SavedProducts []string // Products whose update fully succeeded
	StartedAt     time.Time
	CompletedAt   time.Time
	failures      *multierror.Error
}

// Err returns the failures as one error, or nil
func (r *SaveResult) Err() error {
	return r.failures.ErrorOrNil()
}

// Summary renders the outcome as a one-line message
func (r *SaveResult) Summary() string {
	switch {
	case len(r.Errors) > 0:
		return "Some updates failed: " + strings.Join(r.Errors, ", ")
	case r.Changes == 0:
		return "No changes to save"
	case r.Cancelled:
		return fmt.Sprintf("Save cancelled after %d of %d products", r.Completed, r.Updates)
	default:
		return fmt.Sprintf("Saved %d change%s", r.Changes, plural(r.Changes))
	}
}

// Orchestrator turns pending edits into batched metafield writes
type Orchestrator struct {
	store    *state.DirtyStore
	writer   output.MetafieldWriter
	cache    Invalidator
	recorder Recorder
	storeTag string
	log      logrus.FieldLogger

	cancelled atomic.Bool
	running   atomic.Bool
}

// Option customises an Orchestrator
type Option func(*Orchestrator)

// WithCache invalidates c after every save that wrote upstream
func WithCache(c Invalidator) Option {
	return func(o *Orchestrator) { o.cache = c }
}

// WithRecorder records each save run under the given store name
func WithRecorder(r Recorder, store string) Option {
	return func(o *Orchestrator) {
		o.recorder = r
		o.storeTag = store
	}
}

// WithLogger sets the logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// New creates an orchestrator over store and writer
func New(store *state.DirtyStore, writer output.MetafieldWriter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:  store,
		writer: writer,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.WithField("component", "orchestrator")
	return o
}

// Cancel stops a running save before its next per-product step.
// The request in flight is not interrupted.
func (o *Orchestrator) Cancel() {
	o.cancelled.Store(true)
}

// Running reports whether a save is in progress
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

// Save persists every pending edit. A single product update is sent in one
// call; more are sent one product at a time so progress can be reported and
// Cancel observed between steps. Failures never stop the remaining steps.
func (o *Orchestrator) Save(ctx context.Context, opts SaveOptions) (*SaveResult, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("a save is already running")
	}
	defer o.running.Store(false)
	o.cancelled.Store(false)

	unknown := o.store.UnknownCells()
	result := &SaveResult{
		MutationResult: models.MutationResult{Errors: []string{}},
		RunID:          uuid.New().String(),
		Changes:        o.store.Len() - len(unknown),
		StartedAt:      time.Now(),
	}
	for _, c := range unknown {
		err := fmt.Errorf("%s: unknown field %s", c.ProductID, c.Field)
		result.Errors = append(result.Errors, err.Error())
		result.failures = multierror.Append(result.failures, err)
	}

	updates := o.store.Updates()
	result.Updates = len(updates)
	if len(updates) == 0 {
		result.Success = len(result.Errors) == 0
		result.CompletedAt = time.Now()
		return result, nil
	}

	log := o.log.WithFields(logrus.Fields{"run": result.RunID, "updates": len(updates), "changes": result.Changes})
	log.Info("saving metafield updates")

	if len(updates) == 1 {
		o.send(ctx, updates, result, "Failed to save: ")
	} else {
		for i, u := range updates {
			if o.cancelled.Load() || ctx.Err() != nil {
				result.Cancelled = true
				log.WithField("completed", i).Warn("save cancelled")
				break
			}
			o.send(ctx, []models.BulkMetafieldUpdate{u}, result, "")
			if opts.OnProgress != nil {
				opts.OnProgress(Progress{Completed: i + 1, Total: len(updates)})
			}
		}
	}

	result.Success = len(result.Errors) == 0 && !result.Cancelled
	result.Cleared = o.clear(result, opts.ClearPolicy)
	result.CompletedAt = time.Now()

	if result.Completed > 0 && o.cache != nil {
		o.cache.Invalidate(fmt.Sprintf("saved %d of %d products", len(result.SavedProducts), result.Updates))
	}

	log.WithFields(logrus.Fields{
		"batches": result.BatchesProcessed,
		"errors":  len(result.Errors),
		"cleared": result.Cleared,
	}).Info("save finished")

	o.record(ctx, result)
	return result, nil
}

// send issues one writer call and folds its outcome into result
func (o *Orchestrator) send(ctx context.Context, updates []models.BulkMetafieldUpdate, result *SaveResult, prefix string) {
	res, err := o.writer.UpdateMetafields(ctx, updates)
	result.Completed += len(updates)
	result.BatchesProcessed += res.BatchesProcessed

	if err != nil {
		msg := prefix + err.Error()
		result.Errors = append(result.Errors, msg)
		result.failures = multierror.Append(result.failures, err)
		o.log.WithField("products", productIDs(updates)).Warnf("update failed: %v", err)
		return
	}
	if !res.Success {
		result.Errors = append(result.Errors, res.Errors...)
		for _, e := range res.Errors {
			result.failures = multierror.Append(result.failures, fmt.Errorf("%s", e))
		}
		o.log.WithField("products", productIDs(updates)).Warnf("update rejected: %s", strings.Join(res.Errors, ", "))
		return
	}
	result.SavedProducts = append(result.SavedProducts, productIDs(updates)...)
}

// clear drops pending cells per policy and returns how many were removed
func (o *Orchestrator) clear(result *SaveResult, policy ClearPolicy) int {
	before := o.store.Len()
	switch policy {
	case ClearSucceeded:
		o.store.RemoveProducts(result.SavedProducts...)
	default:
		if result.Success {
			o.store.Clear()
		}
	}
	return before - o.store.Len()
}

func (o *Orchestrator) record(ctx context.Context, result *SaveResult) {
	if o.recorder == nil {
		return
	}
	run := models.SaveRun{
		ID:               result.RunID,
		StartedAt:        result.StartedAt,
		CompletedAt:      result.CompletedAt,
		Store:            o.storeTag,
		Changes:          result.Changes,
		Updates:          result.Updates,
		Completed:        result.Completed,
		BatchesProcessed: result.BatchesProcessed,
		Success:          result.Success,
		Cancelled:        result.Cancelled,
		Errors:           result.Errors,
	}
	if err := o.recorder.RecordSave(context.WithoutCancel(ctx), run); err != nil {
		o.log.WithField("run", run.ID).Warnf("failed to record save: %v", err)
	}
}

func productIDs(updates []models.BulkMetafieldUpdate) []string {
	ids := make([]string, 0, len(updates))
	for _, u := range updates {
		ids = append(ids, u.ProductID)
	}
	return ids
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
