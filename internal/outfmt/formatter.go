package outfmt

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
)

// Formatter writes a command result as a table or as JSON, depending on
// the mode in ctx.
type Formatter struct {
	ctx    context.Context
	out    io.Writer
	errOut io.Writer
	tw     *tabwriter.Writer
}

// NewFormatter creates a Formatter.
func NewFormatter(ctx context.Context, out, errOut io.Writer) *Formatter {
	return &Formatter{
		ctx:    ctx,
		out:    out,
		errOut: errOut,
		tw:     tabwriter.NewWriter(out, 0, 4, 2, ' ', 0),
	}
}

// JSON reports whether the formatter writes JSON.
func (f *Formatter) JSON() bool {
	return IsJSON(f.ctx)
}

// Output writes data as filtered JSON. It does nothing in text mode.
func (f *Formatter) Output(data any) error {
	if !f.JSON() {
		return nil
	}
	return WriteJSONFiltered(f.out, data, GetQuery(f.ctx), IsCompact(f.ctx))
}

// StartTable writes table headers. It returns false in JSON mode.
func (f *Formatter) StartTable(headers ...string) bool {
	if f.JSON() {
		return false
	}
	f.Row(headers...)
	return true
}

// Row writes one table row.
func (f *Formatter) Row(columns ...string) {
	for i, col := range columns {
		if i > 0 {
			_, _ = fmt.Fprint(f.tw, "\t")
		}
		_, _ = fmt.Fprint(f.tw, col)
	}
	_, _ = fmt.Fprintln(f.tw)
}

// EndTable flushes the table.
func (f *Formatter) EndTable() error {
	return f.tw.Flush()
}

// Empty reports an empty result on stderr.
func (f *Formatter) Empty(message string) {
	_, _ = fmt.Fprintln(f.errOut, message)
}
