// Package driver is the reference consumer of the wiresim engine: it
// schedules a batch of exchanges into a dispatch context and alternates
// perform/select steps until every exchange reaches its terminal marker,
// collecting a per-exchange result transcript.
package driver

import (
	"bytes"
	"context"

	"wiresim"
	"wiresim/internal/pace"
)

// Result is the outcome of one driven exchange.
type Result struct {
	ID      uint64
	Status  int
	Headers wiresim.Header
	Body    []byte
	Info    map[string]any

	// Failure is the transport failure surfaced after the terminal
	// marker, nil for a clean transfer.
	Failure error

	// Stalls counts simulated timeout events observed during the
	// transfer.
	Stalls int

	// Events is the full surfaced activity sequence.
	Events []wiresim.Event
}

// Driver drives exchanges to completion.
type Driver struct {
	dc    *wiresim.Context
	pacer *pace.Pacer
}

// New creates an unpaced driver for the given dispatch context.
func New(dc *wiresim.Context) *Driver {
	return &Driver{dc: dc}
}

// SetRate throttles dispatch steps to stepsPerSec, simulating a slow
// link at the driving-loop level. Zero removes pacing.
func (d *Driver) SetRate(stepsPerSec int) {
	if d.pacer == nil {
		d.pacer = pace.New(stepsPerSec)
		return
	}
	d.pacer.SetRate(stepsPerSec)
}

// Run schedules the exchanges and performs dispatch steps until all of
// them are done or ctx is cancelled. Results are returned in the order
// the exchanges were given. Simulated transport failures appear in the
// results, not in the returned error; only scheduling misuse and context
// cancellation are returned.
func (d *Driver) Run(ctx context.Context, exchanges ...*wiresim.Exchange) ([]Result, error) {
	running := wiresim.Running{}
	for _, ex := range exchanges {
		if err := d.dc.Schedule(ex, running); err != nil {
			return nil, err
		}
	}

	for !allDone(exchanges) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.pacer != nil {
			if err := d.pacer.Wait(ctx); err != nil {
				return nil, err
			}
		}
		d.dc.Perform(running)
		d.dc.Select(0)
	}

	results := make([]Result, len(exchanges))
	for i, ex := range exchanges {
		results[i] = d.collect(ex)
	}
	return results, nil
}

func (d *Driver) collect(ex *wiresim.Exchange) Result {
	res := Result{
		ID:      ex.ID(),
		Headers: ex.Headers(),
		Info:    ex.Snapshot(),
		Failure: ex.Failure(),
		Events:  d.dc.Events(ex.ID()),
	}
	if v, ok := ex.Info(wiresim.InfoStatus); ok {
		if status, ok := v.(int); ok {
			res.Status = status
		}
	}

	if body := ex.BufferedBody(); body != nil {
		res.Body = body
	} else {
		var buf bytes.Buffer
		for _, ev := range res.Events {
			if ev.Kind == wiresim.KindData {
				buf.Write(ev.Data)
			}
		}
		res.Body = buf.Bytes()
	}

	for _, ev := range res.Events {
		if ev.Kind == wiresim.KindStall {
			res.Stalls++
		}
	}
	return res
}

func allDone(exchanges []*wiresim.Exchange) bool {
	for _, ex := range exchanges {
		if !ex.Done() {
			return false
		}
	}
	return true
}
