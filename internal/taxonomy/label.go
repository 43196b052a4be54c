// Package taxonomy implements the six-level capability classification:
// per-level ordinal enumeration, level-offset identifiers, label inheritance
// for identifier columns, and flattening into a parent/child edge list.
//
// The package is pure: it works on in-memory rows and knows nothing about
// spreadsheets. The workbook package loads and stores those rows.
package taxonomy

import "fmt"

// Levels is the fixed depth of the classification tree.
const Levels = 6

// Placeholder is the cell marker meaning "nothing here". It is accepted as a
// label marker on input and written as the identifier of unresolved paths.
const Placeholder = "/"

// LabelState distinguishes a real label from the two kinds of absence.
type LabelState int

const (
	LabelPresent     LabelState = iota // a real label
	LabelEmpty                         // the cell is blank
	LabelPlaceholder                   // the cell holds the "/" marker
)

func (s LabelState) String() string {
	switch s {
	case LabelPresent:
		return "present"
	case LabelEmpty:
		return "empty"
	case LabelPlaceholder:
		return "placeholder"
	default:
		return fmt.Sprintf("LabelState(%d)", int(s))
	}
}

// Label is one classification cell. Text is kept byte-exact: two labels that
// differ only in whitespace are different labels.
type Label struct {
	text  string
	state LabelState
}

// ParseLabel classifies a raw cell value.
func ParseLabel(raw string) Label {
	switch raw {
	case "":
		return Label{state: LabelEmpty}
	case Placeholder:
		return Label{state: LabelPlaceholder}
	default:
		return Label{text: raw, state: LabelPresent}
	}
}

// EmptyLabel returns the absent label.
func EmptyLabel() Label {
	return Label{state: LabelEmpty}
}

// Text returns the label text, empty unless the label is present.
func (l Label) Text() string { return l.text }

// State reports whether the label is present, empty or a placeholder.
func (l Label) State() LabelState { return l.state }

// Present reports whether the label carries real text.
func (l Label) Present() bool { return l.state == LabelPresent }

// Raw returns the cell value the label was parsed from.
func (l Label) Raw() string {
	if l.state == LabelPlaceholder {
		return Placeholder
	}
	return l.text
}

// blankRow reports whether none of the labels carries anything at all.
func blankRow(labels [Levels]Label) bool {
	for _, l := range labels {
		if l.state != LabelEmpty {
			return false
		}
	}
	return true
}

// rawLabels renders labels the way they appear in the sheet.
func rawLabels(labels [Levels]Label) []string {
	out := make([]string, Levels)
	for i, l := range labels {
		out[i] = l.Raw()
	}
	return out
}
