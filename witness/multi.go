package witness

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// MultiWriter fans WriteTrace out to every configured sink concurrently,
// grounded on the pack's errgroup-based concurrent-conversion pattern. This
// is safe because every sink renders from the same already-materialized
// Trace rather than issuing further solver queries — fanning out live
// solver reads would violate the single-writer protocol, but fanning out
// reads of a frozen, read-only snapshot does not.
type MultiWriter struct {
	Sinks []Sink
}

func NewMultiWriter(sinks ...Sink) *MultiWriter {
	return &MultiWriter{Sinks: sinks}
}

func (m *MultiWriter) WriteTrace(ctx context.Context, start, stop int, indexTag string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, sink := range m.Sinks {
		sink := sink
		g.Go(func() error {
			return sink.WriteTrace(ctx, start, stop, indexTag)
		})
	}
	return g.Wait()
}
