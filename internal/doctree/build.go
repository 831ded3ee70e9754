package doctree

// RootID is the id given to synthesized document roots.
const RootID = "root"

// Group returns a visible group node.
func Group(id, name string, bbox Rect, children ...*Node) *Node {
	return &Node{ID: id, Name: name, Kind: KindGroup, Visible: true, BBox: bbox, Children: children}
}

// Leaf returns a visible leaf node.
func Leaf(id, name string, bbox Rect) *Node {
	return &Node{ID: id, Name: name, Kind: KindLeaf, Visible: true, BBox: bbox}
}

// New returns a document whose root group spans the canvas.
func New(title string, width, height float64, children ...*Node) *Document {
	return &Document{
		Title:  title,
		Width:  width,
		Height: height,
		Root:   Group(RootID, title, Rect{Width: width, Height: height}, children...),
	}
}

// R is shorthand for a Rect literal.
func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}
