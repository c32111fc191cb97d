package wiresim

import (
	"bytes"
	"errors"
	"time"

	"wiresim/recipe"
)

type itemKind int

// Queued activity items. itemFirst is always the first item enqueued for
// an exchange (at scheduling time); itemTerminal is always followed by at
// most one itemFailure.
const (
	itemFirst itemKind = iota
	itemData
	itemStall
	itemTerminal
	itemFailure
)

type queueItem struct {
	kind   itemKind
	data   []byte
	offset int64
	err    error
}

// Exchange is the mutable state of one in-flight simulated
// request/response pair. Build exchanges through Context.NewExchange;
// the zero value is unusable and rejected by Schedule.
type Exchange struct {
	id    uint64
	ctx   *Context
	rcp   recipe.Recipe
	opts  Options
	token string

	queue   []queueItem
	meta    map[string]any
	headers Header
	sink    *bytes.Buffer

	// offset is the cumulative body bytes queued so far; declared is the
	// content-length promised by the recipe headers, -1 when absent.
	offset   int64
	declared int64

	bodyPlanned bool
	scheduled   bool
	done        bool
	closed      bool
	failure     error

	startedAt time.Time
}

// ID returns the process-unique exchange identity. Zero means the
// exchange was never registered.
func (ex *Exchange) ID() uint64 {
	return ex.id
}

// Token returns the correlation token assigned at scheduling time.
func (ex *Exchange) Token() string {
	return ex.token
}

// Done reports whether the terminal marker has been surfaced.
func (ex *Exchange) Done() bool {
	return ex.done
}

// Headers returns the response header map. It is empty until the first
// chunk has been processed.
func (ex *Exchange) Headers() Header {
	return ex.headers
}

// Info returns one metadata field.
func (ex *Exchange) Info(key string) (any, bool) {
	v, ok := ex.meta[key]
	return v, ok
}

// Snapshot returns a copy of the full metadata map.
func (ex *Exchange) Snapshot() map[string]any {
	snap := make(map[string]any, len(ex.meta))
	for k, v := range ex.meta {
		snap[k] = v
	}
	return snap
}

// RequestOptions returns the configuration the exchange was created with.
func (ex *Exchange) RequestOptions() Options {
	return ex.opts
}

// BufferedBody returns the body bytes accumulated so far. It is nil
// unless Options.BufferBody was set.
func (ex *Exchange) BufferedBody() []byte {
	if ex.sink == nil {
		return nil
	}
	return ex.sink.Bytes()
}

// Failure returns the recorded transport failure, if any. The same cause
// is surfaced as a KindFailure event after the terminal marker.
func (ex *Exchange) Failure() error {
	return ex.recordedFailure()
}

// Close releases the queued body. It is idempotent and does not touch
// the dispatch context; the engine never destroys an exchange.
func (ex *Exchange) Close() {
	if ex.closed {
		return
	}
	ex.closed = true
	ex.queue = nil
}

func (ex *Exchange) enqueue(it queueItem) {
	ex.queue = append(ex.queue, it)
}

// fail records a transport failure. The first failure wins; later ones
// are dropped so the surfaced cause matches the first thing that went
// wrong.
func (ex *Exchange) fail(err error) {
	if ex.failure != nil {
		return
	}
	ex.failure = err
	ex.meta[InfoError] = err.Error()
}

// recordedFailure resolves the failure to surface after the terminal
// marker: a failure recorded by a simulator, or an error the recipe
// declared through its info map.
func (ex *Exchange) recordedFailure() error {
	if ex.failure != nil {
		return ex.failure
	}
	if s, ok := ex.meta[InfoError].(string); ok && s != "" {
		return &TransferError{Op: "read", URL: ex.opts.URL, Err: errors.New(s)}
	}
	return nil
}

// addUploaded bumps the uploaded-bytes counter when tracked.
func (ex *Exchange) addUploaded(n int) {
	if !ex.opts.tracks(InfoSizeUpload) {
		return
	}
	prev, _ := ex.meta[InfoSizeUpload].(int64)
	ex.meta[InfoSizeUpload] = prev + int64(n)
}

// addDownloaded bumps the downloaded-bytes counter when tracked.
func (ex *Exchange) addDownloaded(n int) {
	if !ex.opts.tracks(InfoSizeDownload) {
		return
	}
	prev, _ := ex.meta[InfoSizeDownload].(int64)
	ex.meta[InfoSizeDownload] = prev + int64(n)
}

// notifyProgress invokes the progress callback with a metadata snapshot.
func (ex *Exchange) notifyProgress(transferred, expected int64) {
	if ex.opts.Progress == nil {
		return
	}
	ex.opts.Progress(transferred, expected, ex.Snapshot())
}
