package sqlite

import (
	"fmt"

	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

// placeholder is one parameter occurrence in a SQL statement, carrying
// the engine slot index assigned by the engine's numbering rules.
type placeholder struct {
	index    int    // 1-based bind slot
	name     string // literal key including prefix; empty for positional
	explicit bool   // true for ?N
}

// scanPlaceholders walks the SQL text and assigns bind slots the way the
// engine does: '?' takes the largest slot so far plus one, '?N' takes
// slot N, and a named placeholder reuses its slot on repeat occurrences.
// String and identifier literals and comments are skipped.
func scanPlaceholders(sql string) []placeholder {
	var phs []placeholder
	named := make(map[string]int)
	max := 0

	i := 0
	for i < len(sql) {
		c := sql[i]
		switch c {
		case '\'', '"', '`':
			i = skipQuoted(sql, i, c)
		case '[':
			i++
			for i < len(sql) && sql[i] != ']' {
				i++
			}
			i++
		case '-':
			if i+1 < len(sql) && sql[i+1] == '-' {
				for i < len(sql) && sql[i] != '\n' {
					i++
				}
			} else {
				i++
			}
		case '/':
			if i+1 < len(sql) && sql[i+1] == '*' {
				i += 2
				for i+1 < len(sql) && !(sql[i] == '*' && sql[i+1] == '/') {
					i++
				}
				i += 2
			} else {
				i++
			}
		case '?':
			i++
			start := i
			for i < len(sql) && sql[i] >= '0' && sql[i] <= '9' {
				i++
			}
			if i > start {
				n := 0
				for _, d := range sql[start:i] {
					n = n*10 + int(d-'0')
				}
				if n > max {
					max = n
				}
				phs = append(phs, placeholder{index: n, explicit: true})
			} else {
				max++
				phs = append(phs, placeholder{index: max})
			}
		case ':', '@', '$':
			start := i
			i++
			for i < len(sql) && isNameByte(sql[i]) {
				i++
			}
			if i == start+1 {
				continue // bare prefix character, not a parameter
			}
			key := sql[start:i]
			idx, ok := named[key]
			if !ok {
				max++
				idx = max
				named[key] = idx
			}
			phs = append(phs, placeholder{index: idx, name: key})
		default:
			i++
		}
	}
	return phs
}

func skipQuoted(sql string, i int, q byte) int {
	i++
	for i < len(sql) {
		if sql[i] == q {
			if i+1 < len(sql) && sql[i+1] == q {
				i += 2 // doubled quote escape
				continue
			}
			return i + 1
		}
		i++
	}
	return i
}

func isNameByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// bindArgs resolves a parameter source against the statement text into a
// flat slot-indexed argument vector. Binding is purely by value; the SQL
// text is never interpolated. Positional resolution consumes the input
// sequence left to right for unlabelled '?' and by slot for '?N'; named
// resolution looks up each placeholder's literal key, with the prefix
// first and bare as a fallback. Slots left unassigned bind NULL.
func bindArgs(sql string, params types.Params) ([]any, error) {
	phs := scanPlaceholders(sql)
	max := 0
	for _, ph := range phs {
		if ph.index > max {
			max = ph.index
		}
	}

	args := make([]any, max)
	bound := make([]bool, max)

	if params.IsNamed() {
		m := params.Mapping()
		for _, ph := range phs {
			if ph.name == "" {
				return nil, fmt.Errorf("%w: positional placeholder with a named parameter source",
					types.ErrParameterCountMismatch)
			}
			if bound[ph.index-1] {
				continue
			}
			v, ok := m[ph.name]
			if !ok {
				v, ok = m[ph.name[1:]]
			}
			if !ok {
				return nil, fmt.Errorf("%w: %s", types.ErrMissingParameter, ph.name)
			}
			val, err := types.Bind(v)
			if err != nil {
				return nil, err
			}
			args[ph.index-1] = val.Raw()
			bound[ph.index-1] = true
		}
		return args, nil
	}

	vals := params.Positional()
	if len(vals) > max {
		return nil, fmt.Errorf("%w: %d values for %d parameter slots",
			types.ErrParameterCountMismatch, len(vals), max)
	}
	next := 0
	for _, ph := range phs {
		slot := ph.index - 1
		var v any
		if ph.name == "" && !ph.explicit {
			if next >= len(vals) {
				return nil, fmt.Errorf("%w: statement requires more than %d positional values",
					types.ErrParameterCountMismatch, len(vals))
			}
			v = vals[next]
			next++
		} else {
			if bound[slot] {
				continue
			}
			if slot >= len(vals) {
				return nil, fmt.Errorf("%w: no value for parameter slot %d",
					types.ErrParameterCountMismatch, ph.index)
			}
			v = vals[slot]
		}
		val, err := types.Bind(v)
		if err != nil {
			return nil, err
		}
		args[slot] = val.Raw()
		bound[slot] = true
	}
	return args, nil
}
