package sync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/toolhive-badge-sync/internal/artifact"
	"github.com/stacklok/toolhive-badge-sync/internal/checkpoint"
	"github.com/stacklok/toolhive-badge-sync/internal/otel"
	"github.com/stacklok/toolhive-badge-sync/internal/registry"
	"github.com/stacklok/toolhive-badge-sync/internal/telemetry"
)

//go:generate mockgen -destination=mocks/mock_renderer.go -package=mocks -source=driver.go Renderer

// Renderer writes the badge and snapshot of one artifact
type Renderer interface {
	// RenderBadge writes the SVG badge and returns its path
	RenderBadge(ctx context.Context, meta artifact.Metadata) (string, error)

	// RenderSnapshot writes the JSON snapshot. ok is false when the
	// coordinate is blank and nothing was written.
	RenderSnapshot(ctx context.Context, meta artifact.Metadata) (path string, ok bool, err error)
}

// Driver runs the sync pass over the registry
type Driver struct {
	client   registry.Client
	store    checkpoint.Store
	renderer Renderer

	pageSize int
	maxPages int

	tracer   trace.Tracer
	metrics  *telemetry.SyncMetrics
	newRunID func() string
}

// Option is a function that configures the driver
type Option func(*Driver)

// WithPageSize sets the number of records requested per page
func WithPageSize(size int) Option {
	return func(d *Driver) {
		d.pageSize = size
	}
}

// WithMaxPages caps the number of pages fetched in one run. 0 means no cap.
func WithMaxPages(pages int) Option {
	return func(d *Driver) {
		d.maxPages = pages
	}
}

// WithTracer sets the tracer used for run and page spans
func WithTracer(tracer trace.Tracer) Option {
	return func(d *Driver) {
		d.tracer = tracer
	}
}

// WithSyncMetrics sets the sync metrics for the driver
func WithSyncMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(d *Driver) {
		d.metrics = metrics
	}
}

// WithRunIDGenerator overrides how run ids are generated
func WithRunIDGenerator(gen func() string) Option {
	return func(d *Driver) {
		d.newRunID = gen
	}
}

// NewDriver creates a new Driver with injected dependencies
func NewDriver(client registry.Client, store checkpoint.Store, renderer Renderer, opts ...Option) *Driver {
	d := &Driver{
		client:   client,
		store:    store,
		renderer: renderer,
		pageSize: registry.DefaultPageSize,
		newRunID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// runState is the mutable state of a single pass
type runState struct {
	result  *Result
	lastTS  int64
	newTS   int64
	hasNew  bool
	runAttr slog.Attr
}

// Run performs one sync pass. Fetch failures end the run normally with
// StopFetchFailed. A render failure aborts the run and returns an *Error
// carrying the partial result; the checkpoint is not written in that case.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := d.newRunID()

	ctx, span := otel.StartSpan(ctx, d.tracer, "sync.Driver.Run",
		trace.WithAttributes(otel.AttrRunID.String(runID)),
	)
	defer span.End()

	st := &runState{
		result:  &Result{RunID: runID},
		runAttr: slog.String("run_id", runID),
	}
	st.lastTS = d.store.Read(ctx)
	st.result.PreviousTS = st.lastTS
	span.SetAttributes(otel.AttrPreviousTS.Int64(st.lastTS))

	slog.InfoContext(ctx, "Starting badge sync run", st.runAttr, "last_ts", st.lastTS, "page_size", d.pageSize)

	reason, err := d.walk(ctx, st)
	st.result.StopReason = reason
	span.SetAttributes(otel.AttrStopReason.String(string(reason)))
	if st.hasNew {
		newTS := st.newTS
		st.result.NewTS = &newTS
		span.SetAttributes(otel.AttrNewTS.Int64(newTS))
	}

	if err != nil {
		otel.RecordError(span, err)
		d.metrics.RecordRunDuration(ctx, time.Since(start), string(reason), false)
		slog.ErrorContext(ctx, "Badge sync run aborted", st.runAttr,
			"stop_reason", reason,
			"rendered", st.result.Rendered,
			"error", err)
		return st.result, &Error{Reason: reason, Result: st.result, Err: err}
	}

	d.commit(ctx, st)

	d.metrics.RecordWatermark(ctx, st.result.Watermark())
	d.metrics.RecordRunDuration(ctx, time.Since(start), string(reason), true)
	slog.InfoContext(ctx, "Badge sync run finished", st.runAttr,
		"stop_reason", reason,
		"pages_fetched", st.result.PagesFetched,
		"rendered", st.result.Rendered,
		"skipped_invalid", st.result.SkippedInvalid,
		"checkpoint_written", st.result.CheckpointWritten,
		"duration", time.Since(start))

	return st.result, nil
}

// walk fetches pages until a stop condition is met
func (d *Driver) walk(ctx context.Context, st *runState) (StopReason, error) {
	for page := 0; ; page++ {
		if d.maxPages > 0 && page >= d.maxPages {
			return StopMaxPages, nil
		}
		if ctx.Err() != nil {
			slog.WarnContext(ctx, "Badge sync run cancelled", st.runAttr, "page", page)
			return StopCancelled, nil
		}

		records, err := d.fetchPage(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				slog.WarnContext(ctx, "Badge sync run cancelled during fetch", st.runAttr, "page", page)
				return StopCancelled, nil
			}
			var fetchErr *registry.FetchError
			temporary := errors.As(err, &fetchErr) && fetchErr.Temporary()
			slog.WarnContext(ctx, "Ending run on fetch failure", st.runAttr,
				"page", page,
				"temporary", temporary)
			return StopFetchFailed, nil
		}
		st.result.PagesFetched++
		d.metrics.RecordPageFetched(ctx)

		if len(records) == 0 {
			return StopExhausted, nil
		}

		processed, reached, err := d.processPage(ctx, st, page, records)
		if err != nil {
			return StopRenderFailed, err
		}
		if reached {
			return StopWatermarkReached, nil
		}
		if processed == 0 {
			return StopNoNewRecords, nil
		}
	}
}

func (d *Driver) fetchPage(ctx context.Context, page int) ([]artifact.RawComponent, error) {
	ctx, span := otel.StartSpan(ctx, d.tracer, "sync.Driver.FetchPage",
		trace.WithAttributes(
			otel.AttrPage.Int(page),
			otel.AttrPageSize.Int(d.pageSize),
		),
	)
	defer span.End()

	records, err := d.client.FetchPage(ctx, page, d.pageSize)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(records)))
	return records, nil
}

// processPage normalizes and renders the records of one page in order. It
// reports how many artifacts were rendered and whether the watermark was met.
func (d *Driver) processPage(
	ctx context.Context, st *runState, page int, records []artifact.RawComponent,
) (processed int, reached bool, err error) {
	for i, raw := range records {
		meta := artifact.Normalize(raw)

		if page == 0 && i == 0 {
			st.newTS = meta.Timestamp
			st.hasNew = true
		}

		// A non-object record has no timestamp to compare against the watermark
		if !raw.IsRecord() {
			slog.WarnContext(ctx, "Skipping non-object record", st.runAttr, "page", page, "index", i)
			st.result.SkippedInvalid++
			d.metrics.RecordArtifactSkipped(ctx)
			continue
		}

		if meta.Timestamp <= st.lastTS {
			slog.DebugContext(ctx, "Reached watermark", st.runAttr,
				"artifact", meta.Coordinate().String(),
				"timestamp", meta.Timestamp,
				"last_ts", st.lastTS)
			return processed, true, nil
		}

		if err := meta.Coordinate().Validate(); err != nil {
			slog.WarnContext(ctx, "Skipping invalid record", st.runAttr,
				"page", page,
				"index", i,
				"id", meta.ID,
				"group_id", meta.GroupID,
				"artifact_id", meta.ArtifactID,
				"error", err)
			st.result.SkippedInvalid++
			d.metrics.RecordArtifactSkipped(ctx)
			continue
		}

		if err := d.render(ctx, meta); err != nil {
			return processed, false, err
		}
		processed++
		st.result.Rendered++
		d.metrics.RecordArtifactRendered(ctx)
	}
	return processed, false, nil
}

func (d *Driver) render(ctx context.Context, meta artifact.Metadata) error {
	ctx, span := otel.StartSpan(ctx, d.tracer, "sync.Driver.Render",
		trace.WithAttributes(
			otel.AttrArtifact.String(meta.Coordinate().String()),
			otel.AttrArtifactVersion.String(meta.LatestVersion),
		),
	)
	defer span.End()

	if _, err := d.renderer.RenderBadge(ctx, meta); err != nil {
		otel.RecordError(span, err)
		return err
	}
	if _, ok, err := d.renderer.RenderSnapshot(ctx, meta); err != nil {
		otel.RecordError(span, err)
		return err
	} else if !ok {
		slog.WarnContext(ctx, "Snapshot not written", "artifact", meta.Coordinate().String())
	}
	return nil
}

// commit persists the new watermark when it moves forward. A write failure
// is logged and leaves the run successful; the next run redoes the work.
func (d *Driver) commit(ctx context.Context, st *runState) {
	if !st.hasNew || st.newTS <= st.lastTS {
		return
	}

	if err := d.store.Write(ctx, st.newTS); err != nil {
		slog.ErrorContext(ctx, "Failed to write checkpoint", st.runAttr,
			"ts", st.newTS,
			"error", err)
		return
	}
	st.result.CheckpointWritten = true
	slog.InfoContext(ctx, "Checkpoint advanced", st.runAttr, "previous_ts", st.lastTS, "ts", st.newTS)
}
