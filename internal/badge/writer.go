package badge

import (
	"context"
	"fmt"
	"io"
)

// Object is a rendered badge ready to be stored
type Object struct {
	Key          string
	Body         []byte
	CacheControl string
	ContentType  string
}

// Writer stores badge objects
type Writer interface {
	// Put stores obj, replacing any previous object with the same key
	Put(ctx context.Context, obj *Object) error
}

// DryRunWriter prints what would be written without storing anything
type DryRunWriter struct {
	out io.Writer
}

// NewDryRunWriter creates a dry-run writer printing to out
func NewDryRunWriter(out io.Writer) *DryRunWriter {
	return &DryRunWriter{out: out}
}

// Put prints the object metadata and body
func (w *DryRunWriter) Put(_ context.Context, obj *Object) error {
	_, err := fmt.Fprintf(w.out, "--- %s (%s, Cache-Control: %s) ---\n%s\n",
		obj.Key, obj.ContentType, obj.CacheControl, obj.Body)
	return err
}
