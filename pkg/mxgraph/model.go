package mxgraph

// Sentinel cell ids in the mxGraph model. Cell "0" is the invisible root and
// cell "1" is the default layer; every other cell's parent chain terminates
// at one of them. Neither carries diagram content.
const (
	RootCellID  = "0"
	LayerCellID = "1"
)

// Geometry holds the position and size of a vertex, in diagram coordinates.
type Geometry struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Cell is one raw element of the mxGraph model: a vertex, an edge, or a
// structural cell. Fields mirror the mxCell XML attributes; absent attributes
// are zero values.
type Cell struct {
	ID     string
	Value  string // display label, may contain HTML markup
	Style  string // semicolon-delimited style token list
	Vertex bool
	Edge   bool
	Parent string
	Source string // edge source cell id
	Target string // edge target cell id

	// Geometry is nil for cells without an mxGeometry child (edges usually,
	// and some structural cells).
	Geometry *Geometry
}

// IsSentinel reports whether the cell is one of the two structural cells
// that exist in every document and carry no content.
func (c Cell) IsSentinel() bool {
	return c.ID == RootCellID || c.ID == LayerCellID
}

// Page is one decodable diagram page of a document.
type Page struct {
	Index int
	Name  string // the diagram's name attribute, may be empty
	XML   string // uncompressed mxGraphModel XML
}

// PageError records a page whose payload could not be unwrapped.
type PageError struct {
	Index int
	Name  string
	Err   error
}

// Document is the result of extracting pages from a raw draw.io file:
// the pages that decoded cleanly plus a record of those that did not.
type Document struct {
	Pages  []Page
	Failed []PageError
}
