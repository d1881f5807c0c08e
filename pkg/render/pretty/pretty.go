// Package pretty writes dashboard frames as indented, optionally colored JSON.
package pretty

import (
	"context"
	"io"
	"sync"

	"github.com/absmach/flaudit/dashboard"
	prettyjson "github.com/hokaccha/go-prettyjson"
)

var _ dashboard.Display = (*Writer)(nil)

type Writer struct {
	mu        sync.Mutex
	out       io.Writer
	formatter *prettyjson.Formatter
}

func NewWriter(out io.Writer, color bool) *Writer {
	f := prettyjson.NewFormatter()
	f.DisabledColor = !color
	f.Indent = 2

	return &Writer{
		out:       out,
		formatter: f,
	}
}

func (w *Writer) Display(ctx context.Context, frame dashboard.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return w.Write(frame)
}

// Write encodes any value followed by a newline.
func (w *Writer) Write(v any) error {
	data, err := w.formatter.Marshal(v)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.out.Write(append(data, '\n')); err != nil {
		return err
	}

	return nil
}
