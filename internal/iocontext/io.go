// Package iocontext carries a command's standard streams in its context so
// tests can capture them.
package iocontext

import (
	"bytes"
	"context"
	"io"
	"os"
)

// IO holds a command's streams.
type IO struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// DefaultIO returns the process streams.
func DefaultIO() *IO {
	return &IO{In: os.Stdin, Out: os.Stdout, ErrOut: os.Stderr}
}

// Buffers returns an IO reading from in and writing to fresh buffers,
// plus the buffers.
func Buffers(in string) (*IO, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &IO{In: bytes.NewBufferString(in), Out: out, ErrOut: errOut}, out, errOut
}

type ioKey struct{}

// WithIO returns a context carrying streams.
func WithIO(ctx context.Context, streams *IO) context.Context {
	return context.WithValue(ctx, ioKey{}, streams)
}

// GetIO returns the streams in ctx, or the process streams.
func GetIO(ctx context.Context) *IO {
	if streams, ok := ctx.Value(ioKey{}).(*IO); ok && streams != nil {
		return streams
	}
	return DefaultIO()
}
