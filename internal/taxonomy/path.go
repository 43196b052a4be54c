package taxonomy

import "strings"

// Path is a node's ancestry from level 0 down to Level() inclusive.
//
// It is a fixed-width comparable value so it can key a map directly. Slots
// deeper than the path's level are always zero, and the level tag keeps a
// short path distinct from a longer one whose trailing labels are empty.
type Path struct {
	depth  int // number of labels, 1..Levels
	labels [Levels]string
}

// NewPath builds a path from 1..Levels labels. It returns false for an empty
// or oversized label list.
func NewPath(labels ...string) (Path, bool) {
	if len(labels) == 0 || len(labels) > Levels {
		return Path{}, false
	}
	p := Path{depth: len(labels)}
	copy(p.labels[:], labels)
	return p, true
}

// pathOf builds the level-`level` path of a row. It fails when any label on
// the way is not present.
func pathOf(labels [Levels]Label, level int) (Path, bool) {
	p := Path{depth: level + 1}
	for i := 0; i <= level; i++ {
		if !labels[i].Present() {
			return Path{}, false
		}
		p.labels[i] = labels[i].text
	}
	return p, true
}

// Level returns the level of the path's last label.
func (p Path) Level() int { return p.depth - 1 }

// Labels returns a copy of the path's labels.
func (p Path) Labels() []string {
	out := make([]string, p.depth)
	copy(out, p.labels[:p.depth])
	return out
}

// Last returns the label the path ends with.
func (p Path) Last() string {
	if p.depth == 0 {
		return ""
	}
	return p.labels[p.depth-1]
}

// Parent returns the path one level up. The root path has no parent.
func (p Path) Parent() (Path, bool) {
	if p.depth <= 1 {
		return Path{}, false
	}
	parent := p
	parent.depth--
	parent.labels[parent.depth] = ""
	return parent, true
}

func (p Path) String() string {
	return strings.Join(p.labels[:p.depth], " > ")
}
