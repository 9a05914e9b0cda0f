package toolbar

// DropdownGroup tracks the dropdowns of one toolbar container. At most one
// is open at a time.
type DropdownGroup struct {
	open     int
	onChange func(open int)
}

// NewDropdownGroup creates a group with every dropdown closed. onChange, if
// set, runs after each transition with the newly open index or -1.
func NewDropdownGroup(onChange func(open int)) *DropdownGroup {
	return &DropdownGroup{open: -1, onChange: onChange}
}

// Open returns the open dropdown index, or -1.
func (g *DropdownGroup) Open() int {
	return g.open
}

// IsOpen reports whether dropdown i is open.
func (g *DropdownGroup) IsOpen(i int) bool {
	return g.open >= 0 && g.open == i
}

// Toggle closes every sibling of i, then flips i.
func (g *DropdownGroup) Toggle(i int) {
	wasOpen := g.open == i
	g.Close()
	if !wasOpen {
		g.set(i)
	}
}

// Close closes the open dropdown, if any.
func (g *DropdownGroup) Close() {
	if g.open < 0 {
		return
	}
	g.set(-1)
}

func (g *DropdownGroup) set(i int) {
	g.open = i
	if g.onChange != nil {
		g.onChange(i)
	}
}
