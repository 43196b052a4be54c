package taxonomy

// Entry is one enumerated path with its ordinal.
type Entry struct {
	Path    Path
	Ordinal int
}

// LevelOrdinal maps the paths of one level to dense first-seen ordinals.
type LevelOrdinal struct {
	level int
	index map[Path]int
	order []Path
}

func newLevelOrdinal(level int) *LevelOrdinal {
	return &LevelOrdinal{level: level, index: make(map[Path]int)}
}

// assign returns the ordinal of p, giving it the next one if unseen.
func (o *LevelOrdinal) assign(p Path) int {
	if n, ok := o.index[p]; ok {
		return n
	}
	o.order = append(o.order, p)
	n := len(o.order)
	o.index[p] = n
	return n
}

// Lookup returns the ordinal of p.
func (o *LevelOrdinal) Lookup(p Path) (int, bool) {
	n, ok := o.index[p]
	return n, ok
}

// Len returns the number of distinct paths at this level.
func (o *LevelOrdinal) Len() int { return len(o.order) }

// Level returns the level this mapping covers.
func (o *LevelOrdinal) Level() int { return o.level }

// Entries returns the paths in ordinal order.
func (o *LevelOrdinal) Entries() []Entry {
	out := make([]Entry, len(o.order))
	for i, p := range o.order {
		out[i] = Entry{Path: p, Ordinal: i + 1}
	}
	return out
}

// Ordinals is the enumerator's output: one LevelOrdinal per level. It is
// built once per run and handed explicitly to the formatter.
type Ordinals struct {
	levels [Levels]*LevelOrdinal
}

// NewOrdinals returns empty per-level mappings.
func NewOrdinals() *Ordinals {
	o := &Ordinals{}
	for level := range o.levels {
		o.levels[level] = newLevelOrdinal(level)
	}
	return o
}

// Level returns the mapping of one level.
func (o *Ordinals) Level(level int) *LevelOrdinal {
	return o.levels[level]
}

// Lookup returns the ordinal of p at its own level.
func (o *Ordinals) Lookup(p Path) (int, bool) {
	if p.depth < 1 || p.depth > Levels {
		return 0, false
	}
	return o.levels[p.Level()].Lookup(p)
}

// Identifier resolves p to its formatted identifier, or the placeholder.
func (o *Ordinals) Identifier(p Path) Identifier {
	n, ok := o.Lookup(p)
	if !ok {
		return PlaceholderID()
	}
	return IdentifierFor(p.Level(), n)
}

// Counts returns the number of distinct paths per level.
func (o *Ordinals) Counts() [Levels]int {
	var out [Levels]int
	for level, lo := range o.levels {
		out[level] = lo.Len()
	}
	return out
}
