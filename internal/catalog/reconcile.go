package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Action is what the reconciler did with one row.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionFailed  Action = "failed"
)

// RowOutcome records the result for a single input row.
type RowOutcome struct {
	Line   int    `json:"line"` // 1-based position in the row set
	UID    string `json:"uid,omitempty"`
	Action Action `json:"action"`
	Err    error  `json:"-"`
	Error  string `json:"error,omitempty"`
}

// ImportStats is the aggregate result of one import call.
// Created + Updated + Errors == Processed <= Total always holds.
type ImportStats struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Errors    int `json:"errors"`
	Total     int `json:"total"`
	Processed int `json:"processed"`
}

// ImportReport is the accumulator of the row fold.
type ImportReport struct {
	ImportStats
	Rows []RowOutcome `json:"rows,omitempty"`
}

// Failed returns the outcomes of rows that could not be written.
func (r ImportReport) Failed() []RowOutcome {
	var failed []RowOutcome
	for _, o := range r.Rows {
		if o.Action == ActionFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// apply folds one outcome into the report.
func (r ImportReport) apply(o RowOutcome) ImportReport {
	switch o.Action {
	case ActionCreated:
		r.Created++
	case ActionUpdated:
		r.Updated++
	default:
		r.Errors++
	}
	r.Processed++
	r.Rows = append(r.Rows, o)
	return r
}

// Reconciler writes coerced rows into a Store, matching existing records by
// natural key.
type Reconciler struct {
	store  Store
	logger *slog.Logger
}

// NewReconciler creates a Reconciler. A nil logger uses slog.Default().
func NewReconciler(store Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, logger: logger}
}

// ImportRows reconciles rows one at a time, in order.
//
// A failing row is counted and logged and the batch continues; the import as a
// whole never fails. Rows already written stay written. If ctx is cancelled
// between rows the fold stops and the report shows Processed < Total.
//
// The natural-key lookup and the following write are separate storage calls
// with no transaction around them. Two imports racing on the same key can both
// miss the lookup and both insert; the unique index on the key then fails one
// of them as a row error.
func (r *Reconciler) ImportRows(ctx context.Context, rows []RawRow) ImportReport {
	report := ImportReport{
		ImportStats: ImportStats{Total: len(rows)},
		Rows:        make([]RowOutcome, 0, len(rows)),
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("import interrupted",
				"processed", report.Processed,
				"total", report.Total,
				"error", err,
			)
			break
		}
		report = report.apply(r.reconcileRow(ctx, i+1, row))
	}

	r.logger.Info("import finished",
		"created", report.Created,
		"updated", report.Updated,
		"errors", report.Errors,
		"processed", report.Processed,
		"total", report.Total,
	)
	return report
}

func (r *Reconciler) reconcileRow(ctx context.Context, line int, row RawRow) RowOutcome {
	item := CoerceRow(row)
	out := RowOutcome{Line: line, UID: item.ExternalUID}

	action, err := r.write(ctx, &item)
	if err != nil {
		r.logger.Warn("import row failed",
			"line", line,
			"uid", item.ExternalUID,
			"error", err,
		)
		out.Action = ActionFailed
		out.Err = err
		out.Error = MapError(err).Message
		return out
	}
	out.Action = action
	return out
}

// write performs the create-vs-update decision for one coerced item.
// A blank natural key never matches an existing record.
func (r *Reconciler) write(ctx context.Context, item *Item) (Action, error) {
	if item.HasNaturalKey() {
		_, err := r.store.FindByUID(ctx, item.ExternalUID)
		switch {
		case err == nil:
			if err := r.store.UpdateByUID(ctx, item.ExternalUID, item); err != nil {
				return ActionFailed, fmt.Errorf("update %q: %w", item.ExternalUID, err)
			}
			return ActionUpdated, nil
		case !errors.Is(err, ErrNotFound):
			return ActionFailed, fmt.Errorf("lookup %q: %w", item.ExternalUID, err)
		}
	}

	if err := r.store.Insert(ctx, item); err != nil {
		return ActionFailed, fmt.Errorf("insert: %w", err)
	}
	return ActionCreated, nil
}
