package bodyhash

import "io"

// limitWriter wraps an io.Writer and discards bytes past a fixed budget,
// implementing DKIM's l= canonicalized-body length limit.
type limitWriter struct {
	w     io.Writer
	limit int64
}

// Write reports the full length of p as written (callers must see the
// complete body as consumed) but only forwards up to the remaining limit.
func (lw *limitWriter) Write(p []byte) (n int, err error) {
	if lw.limit <= 0 {
		return len(p), nil
	}

	toWrite := int64(len(p))
	if toWrite > lw.limit {
		toWrite = lw.limit
	}

	n, err = lw.w.Write(p[:toWrite])
	lw.limit -= int64(n)

	return len(p), err
}

func newLimitWriter(w io.Writer, limit int64) *limitWriter {
	if limit < 0 {
		limit = 0
	}
	return &limitWriter{
		w:     w,
		limit: limit,
	}
}
