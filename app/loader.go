package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/ColinFirth5566/3D-SFM/splat"
)

// LoadResult is delivered on the loader's channel once a load settles.
// Exactly one of Cloud and Err is set.
type LoadResult struct {
	Generation uuid.UUID
	Source     string
	Cloud      *splat.PointCloud
	Err        error
}

// Loader runs at most one splat load at a time. Starting a new load cancels
// the previous one, and its generation token lets the consumer drop results
// that arrive after a newer load began.
type Loader struct {
	opts    splat.Options
	results chan LoadResult

	generation uuid.UUID
	cancel     context.CancelFunc
	closed     bool
}

func NewLoader(opts splat.Options) *Loader {
	return &Loader{
		opts:    opts,
		results: make(chan LoadResult, 1),
	}
}

// Results delivers settled loads. Consumers must compare the result's
// generation against Generation before acting on it.
func (l *Loader) Results() <-chan LoadResult { return l.results }

// Generation identifies the most recently started load.
func (l *Loader) Generation() uuid.UUID { return l.generation }

// Start begins loading from an http(s) URL or a local file path, canceling
// any load already in flight.
func (l *Loader) Start(source string) uuid.UUID {
	if l.closed {
		return uuid.Nil
	}
	if l.cancel != nil {
		l.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	gen := uuid.New()
	l.generation = gen
	l.cancel = cancel

	go func() {
		defer cancel()
		cloud, err := load(ctx, source, l.opts)
		if ctx.Err() != nil {
			return
		}
		select {
		case l.results <- LoadResult{Generation: gen, Source: source, Cloud: cloud, Err: err}:
		case <-ctx.Done():
		}
	}()

	return gen
}

// Close cancels any in-flight load. Results already buffered are left for
// the consumer to drain and discard by generation.
func (l *Loader) Close() {
	if l.closed {
		return
	}
	l.closed = true
	l.generation = uuid.Nil
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func load(ctx context.Context, source string, opts splat.Options) (*splat.PointCloud, error) {
	var buf []byte
	var err error
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		buf, err = splat.Fetch(ctx, source)
	} else {
		buf, err = os.ReadFile(source)
		if err != nil {
			err = fmt.Errorf("read %s: %w", source, err)
		}
	}
	if err != nil {
		return nil, err
	}
	return splat.Decode(buf, opts)
}
