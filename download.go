package wiresim

import "strconv"

// readResponse simulates receiving the response body. It runs exactly
// once per exchange, eagerly, when the first-chunk marker is processed:
// status and headers are resolved from the recipe, the remaining
// activity queue is fully populated, and the dispatch loop replays it
// one item per step from then on. There is no real stream to pace
// against, so "headers received, then body arrives" collapses into this
// single planning pass.
func (dc *Context) readResponse(ex *Exchange) {
	status := 0
	if ex.rcp != nil {
		status = ex.rcp.StatusCode()
		for _, line := range ex.rcp.HeaderLines(true) {
			ex.headers.addLine(line)
		}
	}
	if status == 0 {
		status = 200
	}
	ex.meta[InfoStatus] = status
	if _, ok := ex.meta[InfoRedirects]; !ok {
		ex.meta[InfoRedirects] = int64(0)
	}

	if v := ex.headers.Get("content-length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			ex.declared = n
		}
	}
	expected := ex.declared
	if expected < 0 {
		expected = 0
	}

	if ex.opts.tracks(InfoTotalTime) {
		ex.meta[InfoTotalTime] = dc.clock.Since(ex.startedAt).Seconds()
	}

	// Headers known, no body yet.
	ex.notifyProgress(0, expected)

	if ex.rcp != nil {
		body, _ := ex.rcp.Content(false)
		if body.IsChunked() {
			for _, chunk := range body.Chunks() {
				if len(chunk) == 0 {
					// Empty chunk simulates a stall at the current
					// offset, not end-of-body.
					ex.enqueue(queueItem{kind: itemStall, offset: ex.offset})
					continue
				}
				ex.offset += int64(len(chunk))
				ex.enqueue(queueItem{kind: itemData, data: chunk, offset: ex.offset})
				ex.addDownloaded(len(chunk))
				ex.notifyProgress(ex.offset, expected)
			}
		} else {
			whole := body.Whole()
			ex.offset = int64(len(whole))
			ex.enqueue(queueItem{kind: itemData, data: whole, offset: ex.offset})
			ex.addDownloaded(len(whole))
		}
	}

	ex.notifyProgress(ex.offset, expected)

	if ex.declared >= 0 && ex.offset != ex.declared {
		ex.fail(&TransferError{
			Op:  "read",
			URL: ex.opts.URL,
			Err: &ShortBodyError{Declared: ex.declared, Got: ex.offset},
		})
	}

	ex.enqueue(queueItem{kind: itemTerminal})
	if cause := ex.recordedFailure(); cause != nil {
		ex.enqueue(queueItem{kind: itemFailure, err: cause})
	}
}
