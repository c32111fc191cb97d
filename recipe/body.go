package recipe

// Body is the payload a recipe hands to the transfer engine: either a
// whole byte string delivered in one piece, or an ordered list of chunks
// delivered one dispatch step at a time. An empty chunk in a chunked body
// is a stall marker, not end-of-body.
type Body struct {
	chunked bool
	whole   []byte
	chunks  [][]byte
}

// Bytes builds a whole-payload body.
func Bytes(b []byte) Body {
	return Body{whole: b}
}

// String builds a whole-payload body from a string.
func String(s string) Body {
	return Body{whole: []byte(s)}
}

// Chunks builds a chunked body. Chunk slices are retained, not copied.
func Chunks(chunks ...[]byte) Body {
	return Body{chunked: true, chunks: chunks}
}

// StringChunks builds a chunked body from strings. An empty string
// becomes a stall marker.
func StringChunks(chunks ...string) Body {
	bs := make([][]byte, len(chunks))
	for i, c := range chunks {
		bs[i] = []byte(c)
	}
	return Body{chunked: true, chunks: bs}
}

// IsChunked reports whether the body is delivered as discrete chunks.
func (b Body) IsChunked() bool {
	return b.chunked
}

// Whole returns the single payload of a non-chunked body.
func (b Body) Whole() []byte {
	return b.whole
}

// Chunks returns the chunk list of a chunked body.
func (b Body) Chunks() [][]byte {
	return b.chunks
}

// Len is the total number of payload bytes across the body.
func (b Body) Len() int {
	if !b.chunked {
		return len(b.whole)
	}
	n := 0
	for _, c := range b.chunks {
		n += len(c)
	}
	return n
}
