package taxonomy

import (
	"math"
	"strconv"
	"strings"
)

// levelOffsets are added to a level's ordinal to form its public identifier.
// Level 0 ids are bare ordinals; deeper levels get a distinguishing prefix.
var levelOffsets = [Levels]int{0, 100, 2000, 3000, 4000, 50000}

// LevelOffset returns the identifier offset of a level.
func LevelOffset(level int) int {
	return levelOffsets[level]
}

type idState int

const (
	idAbsent idState = iota
	idPlaceholder
	idValid
)

// Identifier is the value of an identifier cell: a number, the placeholder
// marker, or nothing.
type Identifier struct {
	value int
	state idState
}

// IdentifierFor formats the identifier of a level's ordinal.
func IdentifierFor(level, ordinal int) Identifier {
	return Identifier{value: levelOffsets[level] + ordinal, state: idValid}
}

// PlaceholderID is the identifier written for unresolved paths.
func PlaceholderID() Identifier {
	return Identifier{state: idPlaceholder}
}

// ParseIdentifier reads an identifier cell. Integral numbers, including
// float renderings such as "2001.0", are valid; "" is absent; anything else
// counts as the placeholder.
func ParseIdentifier(raw string) Identifier {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Identifier{}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Identifier{value: n, state: idValid}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return Identifier{value: int(f), state: idValid}
	}
	return Identifier{state: idPlaceholder}
}

// Valid reports whether the identifier is a number.
func (id Identifier) Valid() bool { return id.state == idValid }

// Absent reports whether the identifier cell is blank.
func (id Identifier) Absent() bool { return id.state == idAbsent }

// Int returns the numeric identifier.
func (id Identifier) Int() (int, bool) {
	return id.value, id.state == idValid
}

// Cell returns the value to store in a spreadsheet cell: an int, the
// placeholder string, or nil.
func (id Identifier) Cell() interface{} {
	switch id.state {
	case idValid:
		return id.value
	case idPlaceholder:
		return Placeholder
	default:
		return nil
	}
}

func (id Identifier) String() string {
	switch id.state {
	case idValid:
		return strconv.Itoa(id.value)
	case idPlaceholder:
		return Placeholder
	default:
		return ""
	}
}
