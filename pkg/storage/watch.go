package storage

import (
	"context"
	"io"
	"strings"
	"sync"
)

type subscription struct {
	ctx    context.Context
	prefix string
	fn     func(context.Context, ObjectEvent)
}

type watched struct {
	System

	mu   sync.Mutex
	subs []*subscription
}

// Watch wraps a backend that has no native notifications so that every
// successful Upload raises an ObjectEvent to matching subscribers. Backends
// that already implement Watcher are returned unchanged.
func Watch(sys System) System {
	if _, ok := sys.(Watcher); ok {
		return sys
	}
	return Synthesize(sys)
}

// Synthesize always raises events from Upload, shadowing any native
// notifications sys has. Only writes made through the returned System are
// observed.
func Synthesize(sys System) System {
	return &watched{System: sys}
}

func (w *watched) Watch(ctx context.Context, prefix string, fn func(context.Context, ObjectEvent)) error {
	sub := &subscription{ctx: ctx, prefix: prefix, fn: fn}

	w.mu.Lock()
	w.subs = append(w.subs, sub)
	w.mu.Unlock()

	go func() {
		<-ctx.Done()
		w.mu.Lock()
		defer w.mu.Unlock()
		for i, s := range w.subs {
			if s == sub {
				w.subs = append(w.subs[:i], w.subs[i+1:]...)
				break
			}
		}
	}()

	return nil
}

func (w *watched) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	cr := &countingReader{r: reader}
	if err := w.System.Upload(ctx, key, cr, contentType); err != nil {
		return err
	}

	w.mu.Lock()
	var matched []*subscription
	for _, s := range w.subs {
		if strings.HasPrefix(key, s.prefix) && s.ctx.Err() == nil {
			matched = append(matched, s)
		}
	}
	w.mu.Unlock()

	event := ObjectEvent{
		Bucket:      w.Container(),
		Key:         key,
		ContentType: contentType,
		Size:        cr.n,
	}
	for _, s := range matched {
		s.fn(s.ctx, event)
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
