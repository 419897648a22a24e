package opengraph

import (
	"bytes"
	"io"
)

var headClose = []byte("</head>")

// HeadInjector is a streaming writer that inserts a block of markup
// immediately before the first "</head>" it sees and passes every other
// byte through untouched. Only a tag-length tail is ever held back, so
// the document is never buffered. If the close tag never appears the
// output equals the input.
type HeadInjector struct {
	dst      io.Writer
	block    []byte
	pending  []byte
	injected bool
	err      error
}

// NewHeadInjector wraps dst with the injection state machine
func NewHeadInjector(dst io.Writer, block string) *HeadInjector {
	return &HeadInjector{dst: dst, block: []byte(block)}
}

// Write implements io.Writer. It always reports the full input length as
// consumed; underlying write failures are sticky and returned on the
// next call and on Close.
func (h *HeadInjector) Write(p []byte) (int, error) {
	if h.err != nil {
		return 0, h.err
	}
	if h.injected {
		_, h.err = h.dst.Write(p)
		return len(p), h.err
	}

	h.pending = append(h.pending, p...)

	if idx := indexCloseHead(h.pending); idx >= 0 {
		if _, h.err = h.dst.Write(h.pending[:idx]); h.err != nil {
			return len(p), h.err
		}
		if _, h.err = h.dst.Write(h.block); h.err != nil {
			return len(p), h.err
		}
		if _, h.err = h.dst.Write(h.pending[idx:]); h.err != nil {
			return len(p), h.err
		}
		h.pending = nil
		h.injected = true
		return len(p), nil
	}

	// Flush everything that can no longer be part of a split "</head>"
	if keep := len(headClose) - 1; len(h.pending) > keep {
		flush := len(h.pending) - keep
		if _, h.err = h.dst.Write(h.pending[:flush]); h.err != nil {
			return len(p), h.err
		}
		h.pending = h.pending[flush:]
	}
	return len(p), nil
}

// Close flushes any held-back tail. Must be called once the source
// document is fully written.
func (h *HeadInjector) Close() error {
	if h.err != nil {
		return h.err
	}
	if len(h.pending) > 0 {
		_, h.err = h.dst.Write(h.pending)
		h.pending = nil
	}
	return h.err
}

// Injected reports whether the block was spliced in
func (h *HeadInjector) Injected() bool {
	return h.injected
}

// InjectHead copies src to dst, splicing block before the first </head>
func InjectHead(dst io.Writer, src io.Reader, block string) error {
	inj := NewHeadInjector(dst, block)
	if _, err := io.Copy(inj, src); err != nil {
		return err
	}
	return inj.Close()
}

// indexCloseHead finds "</head>" case-insensitively
func indexCloseHead(b []byte) int {
	return bytes.Index(bytes.ToLower(b), headClose)
}
