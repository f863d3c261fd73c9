package dataset

import (
	"context"
	"time"

	"txdash/internal/core"
)

// Ports for outbound adapters.
type (
	// Source returns the whole transaction collection. Implementations never
	// filter, page or cache: every call reflects the source as it is now.
	Source interface {
		FetchAll(ctx context.Context) ([]core.Transaction, error)
	}

	// FetchObserver is notified after every FetchAll.
	FetchObserver interface {
		ObserveFetch(source string, took time.Duration, records int, err error)
	}
)

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]core.Transaction, error)

// FetchAll calls f.
func (f SourceFunc) FetchAll(ctx context.Context) ([]core.Transaction, error) {
	return f(ctx)
}

type instrumented struct {
	name     string
	next     Source
	observer FetchObserver
}

// Instrument wraps src so that every fetch is reported to observer under name.
// A nil observer returns src unchanged.
func Instrument(name string, src Source, observer FetchObserver) Source {
	if observer == nil {
		return src
	}
	return &instrumented{name: name, next: src, observer: observer}
}

func (i *instrumented) FetchAll(ctx context.Context) ([]core.Transaction, error) {
	start := time.Now()
	txns, err := i.next.FetchAll(ctx)
	i.observer.ObserveFetch(i.name, time.Since(start), len(txns), err)
	return txns, err
}
