package mxgraph

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/matzehuels/flowmaid/pkg/errors"
)

// xmlGeometry mirrors the mxGeometry child element of a cell.
type xmlGeometry struct {
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
}

// xmlCell mirrors the mxCell element. Boolean attributes are the strings
// "0"/"1" in the source format.
type xmlCell struct {
	ID       string       `xml:"id,attr"`
	Value    string       `xml:"value,attr"`
	Style    string       `xml:"style,attr"`
	Vertex   string       `xml:"vertex,attr"`
	Edge     string       `xml:"edge,attr"`
	Parent   string       `xml:"parent,attr"`
	Source   string       `xml:"source,attr"`
	Target   string       `xml:"target,attr"`
	Geometry *xmlGeometry `xml:"mxGeometry"`
}

// ParseModel parses one page's mxGraphModel XML into its flat cell list, in
// document order. The model element may be wrapped in leftover <diagram>
// markup; parsing starts at the first mxGraphModel element found.
func ParseModel(data string) ([]Cell, error) {
	dec := xml.NewDecoder(strings.NewReader(normalizeEntities(data)))

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeParseFailed, "no mxGraphModel element found")
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParseFailed, err, "malformed diagram XML")
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "mxGraphModel" {
			continue
		}

		var model struct {
			Cells []xmlCell `xml:"root>mxCell"`
		}
		if err := dec.DecodeElement(&model, &start); err != nil {
			return nil, errors.Wrap(errors.ErrCodeParseFailed, err, "malformed mxGraphModel")
		}

		cells := make([]Cell, 0, len(model.Cells))
		for _, c := range model.Cells {
			cells = append(cells, cellFromXML(c))
		}
		return cells, nil
	}
}

func cellFromXML(c xmlCell) Cell {
	cell := Cell{
		ID:     c.ID,
		Value:  c.Value,
		Style:  c.Style,
		Vertex: c.Vertex == "1",
		Edge:   c.Edge == "1",
		Parent: c.Parent,
		Source: c.Source,
		Target: c.Target,
	}
	if c.Geometry != nil {
		cell.Geometry = &Geometry{
			X:      c.Geometry.X,
			Y:      c.Geometry.Y,
			Width:  c.Geometry.Width,
			Height: c.Geometry.Height,
		}
	}
	return cell
}

// normalizeEntities rewrites HTML entities that draw.io emits but Go's XML
// parser rejects. Only &nbsp; shows up in practice.
func normalizeEntities(data string) string {
	return strings.ReplaceAll(data, "&nbsp;", "&#160;")
}
