// Package odata applies OData system query options to in-memory entity
// collections.
//
// An Engine runs $filter, $orderby, $search, $skip, $top and server-driven
// paging over a collection in place and builds next links and delta links.
// Parsing the request URI and serializing the result are left to the caller.
package odata

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/nlstn/go-odata-engine/internal/data"
	"github.com/nlstn/go-odata-engine/internal/edm"
	"github.com/nlstn/go-odata-engine/internal/observability"
	"github.com/nlstn/go-odata-engine/internal/preference"
	"github.com/nlstn/go-odata-engine/internal/query"
	"github.com/nlstn/go-odata-engine/internal/queryerrors"
	"github.com/nlstn/go-odata-engine/internal/trackchanges"
)

// Request describes one query against an entity collection.
type Request struct {
	// EntitySet names the set for telemetry and, with a model, type lookup.
	EntitySet string
	// EntityType describes the entities; looked up from the model by
	// EntitySet when nil.
	EntityType *edm.EntityType
	// RawURI is the request URI continuation links are derived from.
	RawURI string
	// Prefer is the raw Prefer header; odata.maxpagesize lowers the page size.
	Prefer  string
	Options QueryOptions
}

// Engine applies query options. It holds only immutable configuration plus a
// change tracker and is safe for concurrent use.
type Engine struct {
	pageSize int
	logger   *slog.Logger
	obs      *observability.Config
	now      func() time.Time
	model    *edm.Model
	tracker  *trackchanges.Tracker
}

// NewEngine creates an engine with the given options.
func NewEngine(opts ...Option) *Engine {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}

	e := &Engine{
		pageSize: cfg.PageSize,
		logger:   cfg.Logger,
		obs:      cfg.Observability,
		now:      cfg.Now,
		model:    cfg.Model,
		tracker:  trackchanges.NewTracker(),
	}
	if e.pageSize <= 0 {
		e.pageSize = DefaultPageSize
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.obs == nil {
		e.obs = observability.NewConfig()
	}
	return e
}

// PageSize returns the server-side page size.
func (e *Engine) PageSize() int {
	return e.pageSize
}

// EffectivePageSize returns the page size used for a request carrying the
// given Prefer header.
func (e *Engine) EffectivePageSize(prefer string) int {
	return preference.Parse(prefer).PageSize(e.pageSize)
}

// PreferenceApplied returns the Preference-Applied header value for a
// request carrying the given Prefer header.
func (e *Engine) PreferenceApplied(prefer string) string {
	return preference.Parse(prefer).Applied(e.EffectivePageSize(prefer))
}

// Observability returns the observability configuration.
func (e *Engine) Observability() *observability.Config {
	return e.obs
}

// Apply runs Filter, OrderBy, Search, Skip, Top and server-side paging over
// coll in that order, stopping at the first failure. On failure coll may have
// been modified by the stages that already ran.
func (e *Engine) Apply(ctx context.Context, coll *EntityCollection, req Request) error {
	if coll == nil {
		return nil
	}

	ctx, span := e.obs.Tracer().StartQuery(ctx, req.EntitySet, coll.Len())
	defer span.End()

	evalCtx := e.evalContext(req)
	opts := req.Options
	pageSize := e.EffectivePageSize(req.Prefer)
	run := func(stage string, fn func() error, attrs ...attribute.KeyValue) error {
		return e.stage(ctx, req.EntitySet, stage, coll, fn, attrs...)
	}

	err := func() error {
		if opts.Filter != nil {
			if err := run(observability.StageFilter, func() error {
				return query.ApplyFilter(coll, opts.Filter, evalCtx)
			}); err != nil {
				return err
			}
		}
		if len(opts.OrderBy) > 0 {
			if err := run(observability.StageOrderBy, func() error {
				return query.ApplyOrderBy(coll, opts.OrderBy, evalCtx)
			}); err != nil {
				return err
			}
		}
		if opts.Search != nil {
			if err := run(observability.StageSearch, func() error {
				return query.ApplySearch(coll, opts.Search, evalCtx)
			}); err != nil {
				return err
			}
		}
		if opts.Skip != nil {
			if err := run(observability.StageSkip, func() error {
				return query.ApplySkip(coll, *opts.Skip)
			}, observability.QuerySkipAttr(*opts.Skip)); err != nil {
				return err
			}
		}
		if opts.Top != nil {
			if err := run(observability.StageTop, func() error {
				return query.ApplyTop(coll, *opts.Top)
			}, observability.QueryTopAttr(*opts.Top)); err != nil {
				return err
			}
		}
		return run(observability.StagePaging, func() error {
			return query.ApplyServerSidePaging(coll, opts.SkipToken, req.RawURI, pageSize)
		}, observability.PageSizeAttr(pageSize))
	}()
	if err != nil {
		e.obs.Tracer().RecordError(span, err)
		return err
	}

	e.obs.Tracer().EndStage(span, coll.Len(), coll.Next != nil)
	e.obs.Metrics().RecordResultCount(ctx, req.EntitySet, coll.Len())
	return nil
}

// ApplyDelta sets the delta link of delta to rawURI carrying token.
func (e *Engine) ApplyDelta(ctx context.Context, delta *Delta, rawURI, token string) error {
	if delta == nil {
		return nil
	}
	return e.stage(ctx, "", observability.StageDeltaToken, &delta.EntityCollection, func() error {
		return query.ApplyDeltaToken(&delta.EntityCollection, rawURI, token)
	})
}

// RecordChange records an added or updated entity of entitySet for change
// tracking. The entity must have an ID.
func (e *Engine) RecordChange(entitySet string, entity *Entity, changeType ChangeType) error {
	_, err := e.tracker.RecordEntity(entitySet, entity, changeType)
	return err
}

// RecordDeletion records the removal of the entity with id from entitySet.
func (e *Engine) RecordDeletion(entitySet string, id *url.URL) error {
	_, err := e.tracker.RecordDeletion(entitySet, id)
	return err
}

// RecordLink records an added or removed relationship between two entities.
func (e *Engine) RecordLink(entitySet string, source *url.URL, relationship string, target *url.URL, added bool) {
	e.tracker.RecordLink(entitySet, trackchanges.LinkChange{
		Source:       source,
		Relationship: relationship,
		Target:       target,
	}, added)
}

// DeltaToken returns the token marking the current change history of entitySet.
func (e *Engine) DeltaToken(entitySet string) (string, error) {
	e.tracker.RegisterEntitySet(entitySet)
	return e.tracker.CurrentToken(entitySet)
}

// Changes materializes the changes recorded since token. Entities not
// matching filter are reported as deleted with reason Changed. The delta
// link of the result is built from rawURI and the next token.
func (e *Engine) Changes(ctx context.Context, token, rawURI string, filter ASTNode) (*Delta, error) {
	entitySet, err := e.tracker.EntitySetFromToken(token)
	if err != nil {
		return nil, err
	}
	evalCtx := e.evalContext(Request{EntitySet: entitySet})

	var match trackchanges.Matcher
	if filter != nil {
		match = func(entity *data.Entity) (bool, error) {
			result, err := query.Evaluate(filter, entity, evalCtx)
			if err != nil {
				return false, err
			}
			return result.IsTrue(), nil
		}
	}

	delta, next, err := e.tracker.Delta(token, match)
	if err != nil {
		return nil, err
	}
	if err := e.ApplyDelta(ctx, delta, rawURI, next); err != nil {
		return nil, err
	}
	return delta, nil
}

func (e *Engine) evalContext(req Request) query.EvalContext {
	entityType := req.EntityType
	if entityType == nil && req.EntitySet != "" {
		if set, ok := e.model.EntitySet(req.EntitySet); ok {
			entityType = set.Type
		}
	}
	return query.EvalContext{
		EntityType: entityType,
		Model:      e.model,
		Now:        e.now,
	}
}

// stage runs fn under a span, a Server-Timing metric and a debug log record.
func (e *Engine) stage(ctx context.Context, entitySet, stage string, coll *data.EntityCollection, fn func() error, attrs ...attribute.KeyValue) error {
	input := coll.Len()
	if entitySet != "" {
		attrs = append(attrs, observability.EntitySetAttr(entitySet))
	}
	ctx, span := e.obs.Tracer().StartStage(ctx, stage, input, attrs...)
	defer span.End()

	var timing *observability.ServerTimingMetric
	if e.obs.ServerTimingEnabled() {
		timing = observability.StartServerTiming(ctx, stage)
	}
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	timing.Stop()

	e.obs.Metrics().RecordStage(ctx, entitySet, stage, elapsed)
	logger := observability.LoggerWithTrace(ctx, e.logger)

	if err != nil {
		kind := errorKind(err)
		e.obs.Tracer().RecordError(span, err)
		e.obs.Metrics().RecordError(ctx, entitySet, stage, kind)
		logger.Debug("query stage failed",
			slog.String(observability.LogFieldStage, stage),
			slog.String(observability.LogFieldEntitySet, entitySet),
			slog.String("error_kind", kind),
			slog.Any(observability.LogFieldError, err),
		)
		return err
	}

	e.obs.Tracer().EndStage(span, coll.Len(), coll.Next != nil || coll.DeltaLink != nil)
	logger.Debug("query stage applied",
		slog.String(observability.LogFieldStage, stage),
		slog.String(observability.LogFieldEntitySet, entitySet),
		slog.Int("input", input),
		slog.Int(observability.LogFieldResultCount, coll.Len()),
		slog.Float64(observability.LogFieldDuration, durationMillis(elapsed)),
	)
	return nil
}

func durationMillis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func errorKind(err error) string {
	var qe *queryerrors.QueryError
	if errors.As(err, &qe) {
		return qe.Kind.String()
	}
	return "internal"
}
