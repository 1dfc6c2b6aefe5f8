package constraint

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseFiles reads each constraint script in order and merges their
// directives into a single Database. numSteps resolves the "*" range
// endpoint and the unbounded forms of "final"/"always".
func ParseFiles(paths []string, numSteps int) (*Database, error) {
	db := newDatabase()
	var active []StepKey

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "opening constraint file %q", path)
		}
		err = parseOne(f, path, numSteps, db, &active)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	return db, nil
}

func parseOne(r io.Reader, path string, numSteps int, db *Database, active *[]StepKey) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		keyword := fields[0]
		args := fields[1:]
		loc := fmt.Sprintf("%s:%d", path, lineNo)

		switch keyword {
		case "initial":
			*active = []StepKey{stepKey(0)}

		case "final":
			keys, start, err := parseFinal(args, numSteps)
			if err != nil {
				return errors.Wrapf(err, "%s", loc)
			}
			*active = keys
			if db.FinalStart == nil || start < *db.FinalStart {
				db.FinalStart = &start
			}

		case "state":
			keys, err := parseStateList(args, numSteps)
			if err != nil {
				return errors.Wrapf(err, "%s", loc)
			}
			*active = keys

		case "always":
			from := 0
			if len(args) == 1 {
				k, err := strconv.Atoi(args[0])
				if err != nil || k >= 0 {
					return fmt.Errorf("%s: always expects a single negative-offset argument", loc)
				}
				from = -k
			} else if len(args) != 0 {
				return fmt.Errorf("%s: always takes at most one argument", loc)
			}
			keys := make([]StepKey, 0, numSteps-from+1)
			for i := from; i <= numSteps; i++ {
				keys = append(keys, stepKey(i))
			}
			*active = keys

		case "assert", "assume":
			if len(*active) == 0 {
				return fmt.Errorf("%s: %s with no active step", loc, keyword)
			}
			if len(args) == 0 {
				return fmt.Errorf("%s: %s requires an expression", loc, keyword)
			}
			expr := strings.TrimSpace(strings.TrimPrefix(line, keyword))
			c := Constraint{Source: loc, Expr: expr}
			for _, key := range *active {
				if keyword == "assert" {
					db.Asserts[key] = append(db.Asserts[key], c)
				} else {
					db.Assumes[key] = append(db.Assumes[key], c)
				}
			}

		default:
			return fmt.Errorf("%s: unknown directive %q", loc, keyword)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	return nil
}

// parseFinal implements the bare/"-k" forms of the "final" directive,
// including the min(prior, k)/bare-is-0 accumulation rule.
func parseFinal(args []string, numSteps int) ([]StepKey, int, error) {
	switch len(args) {
	case 0:
		keys := make([]StepKey, 0, numSteps+1)
		for i := 0; i <= numSteps; i++ {
			keys = append(keys, finalKey(i))
		}
		return keys, 0, nil
	case 1:
		k, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, 0, errors.Wrap(err, "final: bad offset")
		}
		if k >= 0 {
			return nil, 0, fmt.Errorf("final: offset argument must be negative, got %d", k)
		}
		start := -k
		keys := make([]StepKey, 0, numSteps-start+1)
		for i := start; i <= numSteps; i++ {
			keys = append(keys, finalKey(i))
		}
		return keys, start, nil
	default:
		return nil, 0, fmt.Errorf("final: expected zero or one argument")
	}
}

// parseStateList expands a mixed list of single integers and lo:hi (or
// lo:*) ranges into step keys, preserving input order with duplicates
// removed.
func parseStateList(args []string, numSteps int) ([]StepKey, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("state: expected at least one item")
	}
	seen := make(map[int]bool)
	var keys []StepKey
	add := func(i int) {
		if !seen[i] {
			seen[i] = true
			keys = append(keys, stepKey(i))
		}
	}
	for _, item := range args {
		if lo, hi, ok := strings.Cut(item, ":"); ok {
			loN, err := strconv.Atoi(lo)
			if err != nil {
				return nil, errors.Wrapf(err, "state: bad range start %q", item)
			}
			var hiN int
			if hi == "*" {
				hiN = numSteps
			} else {
				hiN, err = strconv.Atoi(hi)
				if err != nil {
					return nil, errors.Wrapf(err, "state: bad range end %q", item)
				}
			}
			if hiN < loN {
				return nil, fmt.Errorf("state: empty range %q", item)
			}
			for i := loN; i <= hiN; i++ {
				add(i)
			}
		} else {
			i, err := strconv.Atoi(item)
			if err != nil {
				return nil, errors.Wrapf(err, "state: bad item %q", item)
			}
			add(i)
		}
	}
	return keys, nil
}
