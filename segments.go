package noise

// Segments is an ordered list of byte ranges treated as one logical
// scatter-gather payload, the way handshake and transport payloads are
// accepted so callers never have to pre-flatten framed I/O buffers.
type Segments [][]byte

// Len returns the combined length of all segments.
func (s Segments) Len() int {
	n := 0
	for _, seg := range s {
		n += len(seg)
	}
	return n
}

// Slice returns the length bytes starting at offset, which may cross
// segment boundaries, as a freshly allocated contiguous slice.
func (s Segments) Slice(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > s.Len() {
		return nil, ErrBufferTooSmall
	}
	out := make([]byte, 0, length)
	skip := offset
	remaining := length
	for _, seg := range s {
		if skip >= len(seg) {
			skip -= len(seg)
			continue
		}
		seg = seg[skip:]
		skip = 0
		n := len(seg)
		if n > remaining {
			n = remaining
		}
		out = append(out, seg[:n]...)
		remaining -= n
		if remaining == 0 {
			break
		}
	}
	return out, nil
}

// CopyTo appends every segment's bytes, in order, to dst and returns the
// result.
func (s Segments) CopyTo(dst []byte) []byte {
	for _, seg := range s {
		dst = append(dst, seg...)
	}
	return dst
}

// Coalesce flattens the segments into a single contiguous buffer, failing
// if the total length exceeds max. Used by AEAD backends that require a
// contiguous plaintext/ciphertext buffer rather than iterative streaming
// input.
func Coalesce(s Segments, max int) ([]byte, error) {
	total := s.Len()
	if total > max {
		return nil, ErrMessageTooLong
	}
	return s.CopyTo(make([]byte, 0, total)), nil
}
