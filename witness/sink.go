package witness

import (
	"context"
	"strings"
)

// Sink is C7's output contract: materialize the trace over [start, stop)
// to whatever destination the sink owns. indexTag substitutes for a
// literal '%' in the sink's configured path, used by dump-all windowed
// output.
type Sink interface {
	WriteTrace(ctx context.Context, start, stop int, indexTag string) error
}

// resolvePath substitutes indexTag for '%' in template. A template with no
// '%' is returned unchanged regardless of indexTag.
func resolvePath(template, indexTag string) string {
	if !strings.Contains(template, "%") {
		return template
	}
	return strings.ReplaceAll(template, "%", indexTag)
}
