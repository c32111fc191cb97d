package wiresim

import (
	"errors"
	"io"
)

// writeRequest simulates uploading the request body at scheduling time.
// The body is fully consumed here: fixed payloads count once, readers
// are drained, and chunk providers are called with MaxUploadChunk until
// they yield an empty slice. The progress callback fires with zero
// progress first and then once per produced chunk. Provider errors are
// recorded on the exchange and surfaced after the terminal marker.
func (dc *Context) writeRequest(ex *Exchange) {
	body := ex.opts.Body

	switch body.kind {
	case bodyNone:
		ex.notifyProgress(0, 0)

	case bodyBytes:
		total := int64(len(body.data))
		ex.notifyProgress(0, total)
		ex.addUploaded(len(body.data))
		ex.notifyProgress(total, total)

	case bodyReader:
		ex.notifyProgress(0, 0)
		dc.drainReader(ex, body.reader)

	case bodyProvider:
		ex.notifyProgress(0, 0)
		dc.drainProvider(ex, body.provider)
	}
}

// drainReader consumes r in MaxUploadChunk slices until EOF.
func (dc *Context) drainReader(ex *Exchange, r io.Reader) {
	var uploaded int64
	buf := make([]byte, MaxUploadChunk)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			uploaded += int64(n)
			ex.addUploaded(n)
			ex.notifyProgress(uploaded, 0)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				ex.fail(&TransferError{Op: "write", URL: ex.opts.URL, Err: err})
			}
			return
		}
	}
}

// drainProvider calls p until it yields an empty chunk.
func (dc *Context) drainProvider(ex *Exchange, p ChunkProvider) {
	var uploaded int64
	for {
		chunk, err := p(MaxUploadChunk)
		if err != nil {
			ex.fail(&TransferError{Op: "write", URL: ex.opts.URL, Err: err})
			return
		}
		if len(chunk) == 0 {
			return
		}
		uploaded += int64(len(chunk))
		ex.addUploaded(len(chunk))
		ex.notifyProgress(uploaded, 0)
	}
}
