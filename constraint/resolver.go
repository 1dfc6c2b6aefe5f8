package constraint

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/offchainlabs/smtbmc/modelinfo"
)

// ErrNegativeFrame is returned when a netref's resolved step would be
// negative (homeStep - k < 0). The reference implementation this system
// is modeled on silently produces a frame index of -1 in that case; this
// implementation rejects it as a diagnosable error instead.
type ErrNegativeFrame struct {
	Token string
	Frame int
}

func (e ErrNegativeFrame) Error() string {
	return fmt.Sprintf("netref %q resolves to negative frame %d", e.Token, e.Frame)
}

// netrefPattern matches "[name]", "[-k:name]", and "[k:name]", capturing
// the optional offset (with its sign) and the dotted net path. The leading
// context glyph (space, open paren, or start of string) is captured and
// written back, so replacement preserves it verbatim; the character after
// the closing bracket is not examined or consumed.
var netrefPattern = regexp.MustCompile(`(^|[( ])\[(-?[0-9]+:|)([^\]]+)\]`)

// Resolver rewrites netref tokens in constraint expressions into
// solver-ground text bound to specific frames, via the C4 accessor.
type Resolver struct {
	Accessor  modelinfo.Accessor
	TopModule string
	// FrameExpr renders the solver frame variable name for a given
	// absolute step index (e.g. step 3 -> "s3").
	FrameExpr func(step int) string
}

// NewResolver builds a Resolver with the conventional "s<N>" frame naming.
func NewResolver(acc modelinfo.Accessor, topModule string) *Resolver {
	return &Resolver{
		Accessor:  acc,
		TopModule: topModule,
		FrameExpr: func(step int) string { return fmt.Sprintf("s%d", step) },
	}
}

// Resolve rewrites every netref token in expr, each relative to homeStep,
// into its solver-ground equivalent. Expressions with no netref tokens
// are returned unchanged.
func (r *Resolver) Resolve(expr string, homeStep int) (string, error) {
	var resolveErr error
	out := netrefPattern.ReplaceAllStringFunc(expr, func(match string) string {
		if resolveErr != nil {
			return match
		}
		sub := netrefPattern.FindStringSubmatch(match)
		prefix, offsetTok, path := sub[1], sub[2], sub[3]

		step := homeStep
		if offsetTok != "" {
			offsetStr := strings.TrimSuffix(offsetTok, ":")
			k, err := strconv.Atoi(offsetStr)
			if err != nil {
				resolveErr = fmt.Errorf("netref %q: bad offset %q", match, offsetStr)
				return match
			}
			if k < 0 {
				step = homeStep + k
			} else {
				step = k
			}
		}
		if step < 0 {
			resolveErr = ErrNegativeFrame{Token: match, Frame: step}
			return match
		}

		expr, err := r.Accessor.NetExpr(r.TopModule, r.FrameExpr(step), strings.Split(path, "."))
		if err != nil {
			resolveErr = fmt.Errorf("netref %q: %w", match, err)
			return match
		}
		return prefix + expr
	})
	if resolveErr != nil {
		return "", resolveErr
	}
	return out, nil
}
