package model

// Layout is an ordered tree of sections. Array position is the sort order
// shown to the user, so every structural edit shifts sibling indices and
// any cached item path is stale after the edit.
type Layout struct {
	Sections []Section `json:"sections" bson:"sections"`
}

func (l *Layout) Clone() *Layout {
	if l == nil {
		return nil
	}
	c := &Layout{Sections: make([]Section, len(l.Sections))}
	for i := range l.Sections {
		c.Sections[i] = l.Sections[i].Clone()
	}
	return c
}

// Section is one horizontal band of the layout holding an ordered item list.
type Section struct {
	Header SectionHeader `json:"header" bson:"header"`
	Items  []Item        `json:"items" bson:"items"`
}

func (s Section) Clone() Section {
	c := s
	c.Items = make([]Item, len(s.Items))
	for i := range s.Items {
		c.Items[i] = s.Items[i].Clone()
	}
	return c
}

type SectionHeader struct {
	Title       string `json:"title,omitempty" bson:"title,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// Item holds exactly one widget plus its grid sizing.
type Item struct {
	Widget Widget   `json:"widget" bson:"-"`
	Size   ItemSize `json:"size" bson:"size"`
}

func (it Item) Clone() Item {
	c := it
	if it.Widget != nil {
		c.Widget = it.Widget.CloneWidget()
	}
	return c
}

type ItemSize struct {
	GridWidth  int `json:"gridWidth" bson:"grid_width"`
	GridHeight int `json:"gridHeight" bson:"grid_height"`
}

// Coordinate addresses one item inside one section.
type Coordinate struct {
	SectionIndex int `json:"sectionIndex"`
	ItemIndex    int `json:"itemIndex"`
}

// ItemPath addresses an item possibly nested inside container widgets. The
// first coordinate indexes the root layout, each further coordinate the
// layout of the nested-layout widget found at the previous step. Paths are
// recomputed on demand and never cached across structural edits.
type ItemPath []Coordinate

// WalkWidgets visits every widget in the layout depth-first, in section and
// item order, handing the visitor the widget and its path. Returning false
// from the visitor stops the walk.
func (l *Layout) WalkWidgets(visit func(w Widget, path ItemPath) bool) {
	if l == nil {
		return
	}
	l.walk(nil, visit)
}

func (l *Layout) walk(prefix ItemPath, visit func(w Widget, path ItemPath) bool) bool {
	for si := range l.Sections {
		for ii := range l.Sections[si].Items {
			w := l.Sections[si].Items[ii].Widget
			if w == nil {
				continue
			}
			path := append(append(ItemPath(nil), prefix...), Coordinate{SectionIndex: si, ItemIndex: ii})
			if !visit(w, path) {
				return false
			}
			if nested, ok := w.(*NestedLayoutWidget); ok && nested.Layout != nil {
				if !nested.Layout.walk(path, visit) {
					return false
				}
			}
		}
	}
	return true
}

// FindWidget locates a widget by ref anywhere in the layout tree.
func (l *Layout) FindWidget(ref ObjRef) (Widget, ItemPath, bool) {
	var (
		found     Widget
		foundPath ItemPath
	)
	l.WalkWidgets(func(w Widget, path ItemPath) bool {
		if RefsEqual(w.Common().Ref, ref) {
			found = w
			foundPath = path
			return false
		}
		return true
	})
	return found, foundPath, found != nil
}
