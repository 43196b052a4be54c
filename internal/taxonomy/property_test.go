package taxonomy

import (
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// decodeRows turns generated codes into fully labeled rows over a three-letter
// alphabet, so prefixes collide often.
func decodeRows(codes []int) []Row {
	rows := make([]Row, len(codes))
	for i, code := range codes {
		cells := make([]string, Levels)
		for level := 0; level < Levels; level++ {
			cells[level] = string(rune('a' + code%3))
			code /= 3
		}
		rows[i] = RowFromCells(i+3, cells)
	}
	return rows
}

func toPairRows(rows []Row) []PairRow {
	out := make([]PairRow, len(rows))
	for i, r := range rows {
		out[i] = PairRow{Number: r.Number, Labels: r.Labels}
	}
	return out
}

func prefixKey(r Row, level int) string {
	return strings.Join(rawLabels(r.Labels)[:level+1], "\x00")
}

func TestClassificationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	codes := gen.SliceOf(gen.IntRange(0, 728))

	properties.Property("enumeration is deterministic", prop.ForAll(
		func(codes []int) bool {
			rows := decodeRows(codes)
			a, errA := Enumerate(rows)
			b, errB := Enumerate(rows)
			if errA != nil || errB != nil {
				return false
			}
			for level := 0; level < Levels; level++ {
				if !reflect.DeepEqual(a.Level(level).Entries(), b.Level(level).Entries()) {
					return false
				}
			}
			return true
		},
		codes,
	))

	properties.Property("ordinals are dense per level", prop.ForAll(
		func(codes []int) bool {
			rows := decodeRows(codes)
			o, err := Enumerate(rows)
			if err != nil {
				return false
			}
			for level := 0; level < Levels; level++ {
				distinct := make(map[string]struct{})
				for _, r := range rows {
					distinct[prefixKey(r, level)] = struct{}{}
				}
				entries := o.Level(level).Entries()
				if len(entries) != len(distinct) {
					return false
				}
				for i, e := range entries {
					if e.Ordinal != i+1 {
						return false
					}
					if n, ok := o.Lookup(e.Path); !ok || n != e.Ordinal {
						return false
					}
				}
			}
			return true
		},
		codes,
	))

	properties.Property("same prefix gets the same identifier", prop.ForAll(
		func(codes []int) bool {
			rows := decodeRows(codes)
			o, err := Enumerate(rows)
			if err != nil {
				return false
			}
			pairs := toPairRows(rows)
			if _, err := NewFormatter(o, true).FormatRows(pairs); err != nil {
				return false
			}
			for level := 0; level < Levels; level++ {
				byPrefix := make(map[string]Identifier)
				for i, r := range rows {
					key := prefixKey(r, level)
					if prev, ok := byPrefix[key]; ok && prev != pairs[i].IDs[level] {
						return false
					}
					byPrefix[key] = pairs[i].IDs[level]
				}
			}
			return true
		},
		codes,
	))

	properties.Property("identifiers are offset ordinals", prop.ForAll(
		func(codes []int) bool {
			rows := decodeRows(codes)
			o, err := Enumerate(rows)
			if err != nil {
				return false
			}
			pairs := toPairRows(rows)
			if _, err := NewFormatter(o, false).FormatRows(pairs); err != nil {
				return false
			}
			for i, r := range rows {
				for level := 0; level < Levels; level++ {
					p, _ := pathOf(r.Labels, level)
					n, _ := o.Lookup(p)
					id, ok := pairs[i].IDs[level].Int()
					if !ok || id != LevelOffset(level)+n {
						return false
					}
				}
			}
			return true
		},
		codes,
	))

	properties.Property("flattened edges are unique and numeric", prop.ForAll(
		func(codes []int) bool {
			rows := decodeRows(codes)
			o, err := Enumerate(rows)
			if err != nil {
				return false
			}
			pairs := toPairRows(rows)
			if _, err := NewFormatter(o, false).FormatRows(pairs); err != nil {
				return false
			}
			seen := make(map[edgeKey]bool)
			lastLevel := 0
			for _, e := range Flatten(pairs) {
				key := edgeKey{label: e.Label, id: e.ID}
				if seen[key] || e.Level < lastLevel {
					return false
				}
				seen[key] = true
				lastLevel = e.Level
				if (e.Level == 0) != e.Parent.Absent() {
					return false
				}
			}
			return true
		},
		codes,
	))

	properties.TestingRun(t)
}
