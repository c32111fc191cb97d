package wiresim

import "io"

// MaxUploadChunk is the largest slice requested from a ChunkProvider per
// call when simulating a request body upload.
const MaxUploadChunk = 16372

// Metadata keys maintained on an exchange. Options.Track selects which
// of the derived counters are kept up to date.
const (
	InfoMethod       = "method"
	InfoURL          = "url"
	InfoStatus       = "status"
	InfoTotalTime    = "total_time"
	InfoSizeUpload   = "size_upload"
	InfoSizeDownload = "size_download"
	InfoRedirects    = "redirect_count"
	InfoError        = "error"
	InfoUserData     = "userdata"
	InfoToken        = "token"
)

// ProgressFunc is notified as simulated transfer milestones pass. The
// expected count is 0 when the total size is unknown. The snapshot is a
// copy of the exchange metadata at notification time.
type ProgressFunc func(transferred, expected int64, snapshot map[string]any)

// ChunkProvider produces successive request body chunks. It is called
// with a maximum chunk size until it returns an empty slice. A non-nil
// error is recorded as the exchange's transport failure.
type ChunkProvider func(max int) ([]byte, error)

type requestBodyKind int

const (
	bodyNone requestBodyKind = iota
	bodyBytes
	bodyReader
	bodyProvider
)

// RequestBody is the simulated upload payload: absent, a fixed byte
// string, a reader drained in full, or a chunk-producing callback.
type RequestBody struct {
	kind     requestBodyKind
	data     []byte
	reader   io.Reader
	provider ChunkProvider
}

// BytesBody uploads a fixed payload.
func BytesBody(b []byte) RequestBody {
	return RequestBody{kind: bodyBytes, data: b}
}

// StringBody uploads a fixed payload from a string.
func StringBody(s string) RequestBody {
	return RequestBody{kind: bodyBytes, data: []byte(s)}
}

// ReaderBody uploads everything r yields, read in MaxUploadChunk slices.
func ReaderBody(r io.Reader) RequestBody {
	return RequestBody{kind: bodyReader, reader: r}
}

// ProviderBody uploads chunks produced by p until it returns an empty
// slice.
func ProviderBody(p ChunkProvider) RequestBody {
	return RequestBody{kind: bodyProvider, provider: p}
}

// Options is the request configuration an exchange is created with.
// It is captured at construction and read-only after scheduling.
type Options struct {
	Method  string
	URL     string
	Headers map[string]string // request headers, captured verbatim

	// Body is the simulated upload payload. The zero value means no body.
	Body RequestBody

	// Progress is invoked at upload and download milestones. Nil means
	// no notifications.
	Progress ProgressFunc

	// BufferBody accumulates delivered body bytes in an in-memory sink
	// readable through Exchange.BufferedBody.
	BufferBody bool

	// Track names the derived metadata fields to maintain
	// (InfoTotalTime, InfoSizeUpload, InfoSizeDownload). Nil tracks
	// everything.
	Track []string

	// UserData is opaque caller state exposed under InfoUserData.
	UserData any
}

// tracks reports whether the derived metadata field should be maintained.
func (o Options) tracks(key string) bool {
	if o.Track == nil {
		return true
	}
	for _, k := range o.Track {
		if k == key {
			return true
		}
	}
	return false
}
