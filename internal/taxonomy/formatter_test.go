package taxonomy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairRow(number int, labels ...string) PairRow {
	cells := make([]string, 0, Levels*2)
	for _, l := range labels {
		cells = append(cells, l, "")
	}
	return PairRowFromCells(number, cells)
}

func idStrings(r PairRow) []string {
	out := make([]string, Levels)
	for i, id := range r.IDs {
		out[i] = id.String()
	}
	return out
}

func labelStrings(r PairRow) []string {
	out := make([]string, Levels)
	for i, l := range r.Labels {
		out[i] = l.Raw()
	}
	return out
}

func enumerated(t *testing.T, rows ...Row) *Ordinals {
	t.Helper()
	o, err := Enumerate(rows)
	require.NoError(t, err)
	return o
}

func TestFormatRow_WritesLevelOffsets(t *testing.T) {
	o := enumerated(t,
		row(3, "A", "B", "C", "D", "E", "F"),
		row(4, "A", "X", "Y", "D", "E", "G"),
	)
	r := pairRow(2, "A", "X", "Y", "D", "E", "G")

	_, unresolved, err := NewFormatter(o, false).FormatRow(&r)
	require.NoError(t, err)
	assert.Zero(t, unresolved)
	assert.Equal(t, []string{"1", "102", "2002", "3002", "4002", "50002"}, idStrings(r))
}

func TestFormatRow_InheritsParentLabel(t *testing.T) {
	o := enumerated(t,
		row(3, "A", "B", "C", "D", "E", "F"),
		row(4, "A", "B", "B", "B", "B", "B"),
	)
	r := pairRow(2, "A", "B", "", "/", "", "/")

	_, unresolved, err := NewFormatter(o, false).FormatRow(&r)
	require.NoError(t, err)
	assert.Zero(t, unresolved)
	assert.Equal(t, []string{"A", "B", "B", "B", "B", "B"}, labelStrings(r))
	assert.Equal(t, [Levels]bool{false, false, true, true, true, true}, r.Rewritten)
	assert.Equal(t, []string{"1", "101", "2002", "3002", "4002", "50002"}, idStrings(r))
}

func TestFormatRow_UnenumeratedInheritedPathGetsPlaceholder(t *testing.T) {
	o := enumerated(t, row(3, "A", "B", "C", "D", "E", "F"))
	r := pairRow(2, "A", "B", "", "D", "E", "F")

	resolved, unresolved, err := NewFormatter(o, false).FormatRow(&r)
	require.NoError(t, err)
	assert.Equal(t, 2, resolved)
	assert.Equal(t, 4, unresolved)
	assert.Equal(t, "B", r.Labels[2].Raw())
	assert.Equal(t, []string{"1", "101", "/", "/", "/", "/"}, idStrings(r))
}

func TestFormatRow_RootPlaceholderIsCleared(t *testing.T) {
	o := enumerated(t, row(3, "A", "B", "C", "D", "E", "F"))
	r := pairRow(2, "/", "/", "C", "D", "E", "F")

	_, unresolved, err := NewFormatter(o, false).FormatRow(&r)
	require.NoError(t, err)
	assert.Equal(t, Levels, unresolved)
	assert.Equal(t, []string{"", "", "C", "D", "E", "F"}, labelStrings(r))
	assert.Equal(t, [Levels]bool{true, true, false, false, false, false}, r.Rewritten)
	assert.Equal(t, []string{"/", "/", "/", "/", "/", "/"}, idStrings(r))
}

func TestFormatRow_OverwritesStaleIdentifiers(t *testing.T) {
	o := enumerated(t, row(3, "A", "B", "C", "D", "E", "F"))
	r := PairRowFromCells(2, []string{"A", "99", "B", "/", "C", "", "D", "x", "E", "4001", "F", "50001"})

	_, _, err := NewFormatter(o, false).FormatRow(&r)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "101", "2001", "3001", "4001", "50001"}, idStrings(r))
}

func TestFormatRow_StrictFailsOnUnresolvedPath(t *testing.T) {
	o := enumerated(t, row(3, "A", "B", "C", "D", "E", "F"))
	r := pairRow(9, "A", "B", "Q", "D", "E", "F")

	_, _, err := NewFormatter(o, true).FormatRow(&r)
	require.Error(t, err)

	var unresolved *UnresolvedPathError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, 9, unresolved.Row)
	assert.Equal(t, 2, unresolved.Level)
	assert.Equal(t, "A > B > Q", unresolved.Path)
	assert.Contains(t, err.Error(), "never enumerated")
}

func TestFormatRows_SkipsBlankRowsAndCounts(t *testing.T) {
	o := enumerated(t, row(3, "A", "B", "C", "D", "E", "F"))
	rows := []PairRow{
		pairRow(2, "A", "B", "C", "D", "E", "F"),
		pairRow(3, "A", "B", "", "D", "E", "F"),
		pairRow(4),
	}

	stats, err := NewFormatter(o, false).FormatRows(rows)
	require.NoError(t, err)
	assert.Equal(t, FormatStats{Rows: 2, Skipped: 1, Resolved: 8, Unresolved: 4, Inherited: 1}, stats)

	for _, id := range rows[2].IDs {
		assert.True(t, id.Absent())
	}
	assert.Empty(t, Flatten(rows[2:]))
}

func TestFormatRows_SamePrefixSameIdentifier(t *testing.T) {
	o := enumerated(t,
		row(3, "A", "B", "C", "D", "E", "F"),
		row(4, "A", "B", "C", "X", "Y", "Z"),
	)
	rows := []PairRow{
		pairRow(2, "A", "B", "C", "D", "E", "F"),
		pairRow(3, "A", "B", "C", "X", "Y", "Z"),
	}
	_, err := NewFormatter(o, false).FormatRows(rows)
	require.NoError(t, err)

	assert.Equal(t, idStrings(rows[0])[:3], idStrings(rows[1])[:3])
	assert.NotEqual(t, rows[0].IDs[3], rows[1].IDs[3])
}

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		raw   string
		want  string
		valid bool
	}{
		{"2001", "2001", true},
		{" 101 ", "101", true},
		{"2001.0", "2001", true},
		{"1.5", "/", false},
		{"/", "/", false},
		{"abc", "/", false},
		{"", "", false},
	}
	for _, tt := range tests {
		id := ParseIdentifier(tt.raw)
		assert.Equal(t, tt.want, id.String(), "raw %q", tt.raw)
		assert.Equal(t, tt.valid, id.Valid(), "raw %q", tt.raw)
	}

	assert.Nil(t, ParseIdentifier("").Cell())
	assert.Equal(t, Placeholder, PlaceholderID().Cell())
	assert.Equal(t, 50003, IdentifierFor(5, 3).Cell())
}
