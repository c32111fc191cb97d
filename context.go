package wiresim

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wiresim/internal/trace"
	"wiresim/recipe"
)

// Ready is the readiness code Select always reports. All activity is
// precomputed synchronously, so nothing ever needs waiting on.
const Ready = 1

// Running groups scheduled exchanges under their dispatch context.
// Perform advances the bucket belonging to the context it is called on;
// iteration order within a bucket is insertion order, and the engine
// places no constraint on how activity interleaves across exchanges.
type Running map[*Context][]*Exchange

// Context multiplexes simulated transfers. It owns the identity
// allocator and the per-exchange activity log. Construct one per test
// run and pass it explicitly; there is no hidden shared instance.
//
// A Context is not safe for concurrent use. The intended driving loop is
// single-threaded: alternate Perform and Select until every exchange is
// done.
type Context struct {
	clock Clock
	trace *trace.Logger

	lastID uint64
	log    map[uint64][]Event

	// handles mirrors a real transport's open-handle bookkeeping. It is
	// not needed for correctness, only interface parity.
	handles map[uint64]struct{}
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithClock substitutes the time source, typically a FakeClock in tests.
func WithClock(c Clock) ContextOption {
	return func(dc *Context) { dc.clock = c }
}

// WithTrace attaches an activity logger. A nil logger disables tracing.
func WithTrace(l *trace.Logger) ContextOption {
	return func(dc *Context) { dc.trace = l }
}

// NewContext creates an empty dispatch context.
func NewContext(opts ...ContextOption) *Context {
	dc := &Context{
		clock:   RealClock{},
		log:     make(map[uint64][]Event),
		handles: make(map[uint64]struct{}),
	}
	for _, opt := range opts {
		opt(dc)
	}
	return dc
}

// NewExchange builds an exchange from a recipe and captured request
// options, assigning the next process-unique identity. This is the only
// valid construction entry point; exchanges built by hand are rejected
// by Schedule.
func (dc *Context) NewExchange(r recipe.Recipe, opts Options) *Exchange {
	dc.lastID++
	ex := &Exchange{
		id:       dc.lastID,
		ctx:      dc,
		rcp:      r,
		opts:     opts,
		meta:     make(map[string]any),
		headers:  make(Header),
		declared: -1,
	}
	if r != nil {
		for k, v := range r.Info() {
			ex.meta[k] = v
		}
	}
	if opts.Method != "" {
		ex.meta[InfoMethod] = opts.Method
	}
	if opts.URL != "" {
		ex.meta[InfoURL] = opts.URL
	}
	if opts.UserData != nil {
		ex.meta[InfoUserData] = opts.UserData
	}
	if opts.BufferBody {
		ex.sink = new(bytes.Buffer)
	}
	return ex
}

// Schedule registers an exchange into the running set. The request body
// simulation runs eagerly here, and the first-chunk marker is queued so
// the next Perform surfaces header arrival. Scheduling an exchange that
// was not produced by this context fails with ErrNotRegistered;
// scheduling the same exchange twice is an error.
func (dc *Context) Schedule(ex *Exchange, running Running) error {
	if ex == nil || ex.id == 0 || ex.ctx != dc {
		return ErrNotRegistered
	}
	if ex.scheduled {
		return fmt.Errorf("wiresim: exchange %d already scheduled", ex.id)
	}
	ex.scheduled = true
	ex.startedAt = dc.clock.Now()
	ex.token = uuid.NewString()
	ex.meta[InfoToken] = ex.token
	dc.handles[ex.id] = struct{}{}

	dc.writeRequest(ex)
	ex.enqueue(queueItem{kind: itemFirst})

	running[dc] = append(running[dc], ex)
	dc.trace.Schedule(ex.id, ex.token, ex.opts.Method, ex.opts.URL)
	return nil
}

// Perform advances every running exchange by exactly one activity unit.
// Simulated failures never propagate out of Perform; they are surfaced
// as KindFailure events so one bad exchange cannot abort the batch.
func (dc *Context) Perform(running Running) {
	for _, ex := range running[dc] {
		if ex == nil || ex.done {
			continue
		}
		dc.step(ex)
	}
}

// Select reports immediate readiness. The timeout is ignored: all
// activity is precomputed, so there is never anything to wait for.
func (dc *Context) Select(timeout time.Duration) int {
	_ = timeout
	return Ready
}

// Events returns the activity surfaced so far for an exchange, in order.
func (dc *Context) Events(id uint64) []Event {
	return dc.log[id]
}

// OpenHandles reports the number of scheduled exchanges that have not
// reached their terminal marker.
func (dc *Context) OpenHandles() int {
	return len(dc.handles)
}

// step surfaces one activity unit for ex, in priority order: drained
// queue means terminal; an explicit terminal sentinel means terminal
// plus the optional failure slot behind it; the first-chunk marker
// triggers the eager response body simulation; anything else is a data
// or stall item.
func (dc *Context) step(ex *Exchange) {
	if len(ex.queue) == 0 {
		dc.finish(ex, ex.recordedFailure())
		return
	}

	it := ex.queue[0]
	ex.queue = ex.queue[1:]

	switch it.kind {
	case itemTerminal:
		// Fixed two-step: terminal, then pop the failure slot if the
		// simulation queued one.
		var cause error
		if len(ex.queue) > 0 && ex.queue[0].kind == itemFailure {
			cause = ex.queue[0].err
			ex.queue = ex.queue[1:]
		}
		dc.finish(ex, cause)

	case itemFirst:
		if !ex.bodyPlanned {
			ex.bodyPlanned = true
			dc.readResponse(ex)
		}
		dc.surface(ex, Event{Kind: KindFirst})

	case itemStall:
		dc.surface(ex, Event{Kind: KindStall, Offset: it.offset})

	default: // itemData
		if len(it.data) > 0 && ex.sink != nil {
			ex.sink.Write(it.data)
		}
		dc.surface(ex, Event{Kind: KindData, Data: it.data, Offset: it.offset})
	}
}

// finish surfaces the terminal marker and, when a cause exists, the
// single trailing failure event. The exchange is marked done so nothing
// further is ever surfaced for it.
func (dc *Context) finish(ex *Exchange, cause error) {
	dc.surface(ex, Event{Kind: KindTerminal})
	if cause != nil {
		dc.surface(ex, Event{Kind: KindFailure, Err: cause})
	}
	ex.done = true
	delete(dc.handles, ex.id)

	status, _ := ex.meta[InfoStatus].(int)
	dc.trace.Done(ex.id, status, ex.offset, cause)
}

func (dc *Context) surface(ex *Exchange, ev Event) {
	dc.log[ex.id] = append(dc.log[ex.id], ev)
	dc.trace.Event(ex.id, ev.Kind.String(), len(ev.Data), ev.Offset, ev.Err)
}
