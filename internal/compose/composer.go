package compose

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/sync/errgroup"

	"github.com/gutp/discux/internal/observability/metrics"
	"github.com/gutp/discux/internal/ports"
)

// Options groups dependencies for Composer.
type Options struct {
	Client      ports.ContentClient
	SlotTimeout time.Duration
	Metrics     metrics.Recorder
	Logger      *slog.Logger
}

// Composer executes pages against the content API. It is safe for concurrent use.
type Composer struct {
	client      ports.ContentClient
	slotTimeout time.Duration
	metrics     metrics.Recorder
	logger      *slog.Logger
}

// New creates a Composer.
func New(opts Options) *Composer {
	timeout := opts.SlotTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		client:      opts.Client,
		slotTimeout: timeout,
		metrics:     metrics.OrNoop(opts.Metrics),
		logger:      logger.With("component", "compose"),
	}
}

// slotState is written once by the goroutine owning the slot, before done is closed.
type slotState struct {
	done    chan struct{}
	outcome Outcome
	value   any
	doc     any
}

// Compose runs every fetch of page. On success the result has StatusOK and
// every slot holds either its resolved value or its default. When a REQUIRED
// slot fails, the remaining fetches are canceled and the returned error is a
// *SlotError; the result then carries StatusFailed and the same failure.
// An invalid page declaration is reported as a plain error with a nil result.
func (c *Composer) Compose(ctx context.Context, page Page) (*Result, error) {
	if err := page.validate(); err != nil {
		return nil, fmt.Errorf("compose %s: %w", page.Name, err)
	}

	start := time.Now()
	states := make(map[string]*slotState, len(page.Specs))
	for _, s := range page.Specs {
		states[s.Slot] = &slotState{done: make(chan struct{})}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, spec := range page.Specs {
		g.Go(func() error {
			st := states[spec.Slot]
			defer close(st.done)
			return c.runSlot(gctx, page.Name, spec, st, states)
		})
	}
	err := g.Wait()
	if err == nil {
		err = unresolvedRequired(page, states)
	}

	res := &Result{
		Page:     page.Name,
		Status:   StatusOK,
		values:   make(map[string]any, len(states)),
		outcomes: make(map[string]Outcome, len(states)),
	}
	for slot, st := range states {
		res.values[slot] = st.value
		res.outcomes[slot] = st.outcome
		c.metrics.SlotOutcome(page.Name, slot, string(st.outcome))
	}

	if err != nil {
		var se *SlotError
		if !errors.As(err, &se) {
			se = &SlotError{Page: page.Name, Err: err}
		}
		res.Status = StatusFailed
		res.Failure = se
		c.metrics.Composition(page.Name, string(StatusFailed), time.Since(start))
		return res, se
	}

	c.metrics.Composition(page.Name, string(StatusOK), time.Since(start))
	return res, nil
}

func (c *Composer) runSlot(ctx context.Context, pageName string, spec FetchSpec, st *slotState, states map[string]*slotState) error {
	var params url.Values
	if spec.DependsOn != "" {
		dep := states[spec.DependsOn]
		select {
		case <-dep.done:
		case <-ctx.Done():
			return c.skip(pageName, spec, st, ctx.Err())
		}
		switch dep.outcome {
		case OutcomeResolved:
		case OutcomeDefaulted:
			return c.fail(ctx, pageName, spec, st, false, fmt.Errorf("slot %q: %w", spec.DependsOn, ErrDependencyUnavailable))
		case OutcomeFailed:
			// The dependency already failed the composition.
			st.outcome = OutcomeSkipped
			return nil
		default:
			cause := ctx.Err()
			if cause == nil {
				cause = fmt.Errorf("slot %q: %w", spec.DependsOn, ErrDependencyUnavailable)
			}
			return c.skip(pageName, spec, st, cause)
		}
		derived, err := deriveParams(spec.Params, spec.ParamsFrom, dep.doc)
		if err != nil {
			return c.fail(ctx, pageName, spec, st, false, err)
		}
		params = derived
	} else {
		params = spec.Params
	}

	if err := ctx.Err(); err != nil {
		return c.skip(pageName, spec, st, err)
	}

	d, err := c.fetch(ctx, spec, params)
	if err != nil {
		return c.fail(ctx, pageName, spec, st, false, err)
	}
	if d.empty {
		return c.fail(ctx, pageName, spec, st, true, nil)
	}

	st.value = d.value
	st.doc = d.doc
	st.outcome = OutcomeResolved
	return nil
}

func (c *Composer) fetch(ctx context.Context, spec FetchSpec, params url.Values) (decoded, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.slotTimeout)
	defer cancel()

	raw, err := c.client.Get(callCtx, spec.Path, params)
	if err != nil {
		return decoded{}, err
	}
	return spec.decode(spec.Path, raw)
}

// fail applies the slot's criticality to an empty or failed fetch.
func (c *Composer) fail(ctx context.Context, pageName string, spec FetchSpec, st *slotState, empty bool, err error) error {
	if spec.Criticality == Optional {
		st.value = spec.Default
		st.outcome = OutcomeDefaulted
		if ctx.Err() != nil {
			st.outcome = OutcomeSkipped
		}
		if err != nil {
			c.logger.DebugContext(ctx, "optional slot defaulted", "page", pageName, "slot", spec.Slot, "error", err)
		}
		return nil
	}

	st.outcome = OutcomeFailed
	if ctx.Err() != nil {
		st.outcome = OutcomeSkipped
	}
	return &SlotError{
		Page:   pageName,
		Slot:   spec.Slot,
		Action: spec.Action,
		Reason: spec.Reason,
		Empty:  empty,
		Err:    err,
	}
}

// skip marks a slot that never fetched because its context ended or its
// dependency did not resolve. A skipped REQUIRED slot still fails the page;
// when another slot failed first, errgroup keeps that earlier error.
func (c *Composer) skip(pageName string, spec FetchSpec, st *slotState, cause error) error {
	st.outcome = OutcomeSkipped
	if spec.Criticality == Optional {
		st.value = spec.Default
		return nil
	}
	return &SlotError{
		Page:   pageName,
		Slot:   spec.Slot,
		Action: spec.Action,
		Reason: spec.Reason,
		Err:    cause,
	}
}

// unresolvedRequired is the last check before a page is reported OK.
func unresolvedRequired(page Page, states map[string]*slotState) error {
	for _, spec := range page.Specs {
		if spec.Criticality != Required {
			continue
		}
		if st := states[spec.Slot]; st.outcome != OutcomeResolved {
			return &SlotError{
				Page:   page.Name,
				Slot:   spec.Slot,
				Action: spec.Action,
				Reason: spec.Reason,
				Err:    fmt.Errorf("slot ended %q: %w", st.outcome, ErrDependencyUnavailable),
			}
		}
	}
	return nil
}

// deriveParams copies base and adds each ParamsFrom expression evaluated against doc.
func deriveParams(base url.Values, from map[string]string, doc any) (url.Values, error) {
	out := make(url.Values, len(base)+len(from))
	for k, vs := range base {
		out[k] = append([]string(nil), vs...)
	}
	for name, expr := range from {
		v, err := jmespath.Search(expr, doc)
		if err != nil {
			return nil, fmt.Errorf("evaluate %q for param %q: %w", expr, name, err)
		}
		s, ok := paramString(v)
		if !ok {
			return nil, fmt.Errorf("param %q: expression %q: %w", name, expr, ErrDependencyUnavailable)
		}
		out.Set(name, s)
	}
	return out, nil
}

func paramString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}
