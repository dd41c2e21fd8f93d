package mxgraph

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/xml"
	"io"
	"net/url"
	"strings"

	"github.com/matzehuels/flowmaid/pkg/errors"
)

// modelTag is the marker that identifies uncompressed diagram XML. Every
// successful unwrap step is verified against it before being accepted.
const modelTag = "<mxGraphModel"

// ExtractPages unwraps a raw draw.io file into its diagram pages.
//
// Three input layouts are recognized:
//   - an <mxfile> wrapper with one <diagram> element per page, each holding
//     either plain mxGraphModel XML or a compressed payload
//   - a bare <mxGraphModel> document (single page)
//   - a single <diagram> element outside an mxfile wrapper
//
// Pages decode independently: a page whose payload cannot be unwrapped is
// recorded in Document.Failed and does not prevent other pages from loading.
// The returned error is non-nil only when the input contains no recognizable
// draw.io structure at all.
func ExtractPages(data string) (*Document, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty input")
	}

	if diagrams, ok := splitDiagrams(data); ok {
		doc := &Document{}
		for i, d := range diagrams {
			xmlText, err := decodePayload(d.content)
			if err != nil {
				doc.Failed = append(doc.Failed, PageError{Index: i, Name: d.name, Err: err})
				continue
			}
			doc.Pages = append(doc.Pages, Page{Index: i, Name: d.name, XML: xmlText})
		}
		if len(doc.Pages) == 0 && len(doc.Failed) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "document contains no diagram pages")
		}
		return doc, nil
	}

	// No wrapper at all: accept a bare model document.
	if strings.Contains(data, modelTag) {
		return &Document{Pages: []Page{{Index: 0, XML: data}}}, nil
	}

	return nil, errors.New(errors.ErrCodeInvalidInput,
		"input is not a draw.io document (no <mxfile>, <diagram>, or <mxGraphModel> found)")
}

// ListPages returns the name of every page in the document, substituting a
// positional fallback for unnamed pages. Failed pages are included so that
// indices line up with the source file.
func ListPages(data string) ([]string, error) {
	doc, err := ExtractPages(data)
	if err != nil {
		return nil, err
	}

	total := len(doc.Pages) + len(doc.Failed)
	names := make([]string, total)
	for _, p := range doc.Pages {
		names[p.Index] = p.Name
	}
	for _, f := range doc.Failed {
		names[f.Index] = f.Name
	}
	return names, nil
}

// rawDiagram is a <diagram> element before payload decoding.
type rawDiagram struct {
	name    string
	content string
}

// xmlFile mirrors the <mxfile> wrapper. InnerXML captures both plain
// embedded mxGraphModel children and compressed character data.
type xmlFile struct {
	XMLName  xml.Name `xml:"mxfile"`
	Diagrams []struct {
		Name     string `xml:"name,attr"`
		InnerXML string `xml:",innerxml"`
	} `xml:"diagram"`
}

type xmlDiagram struct {
	XMLName  xml.Name `xml:"diagram"`
	Name     string   `xml:"name,attr"`
	InnerXML string   `xml:",innerxml"`
}

// splitDiagrams extracts the per-page payloads from an mxfile wrapper or a
// standalone diagram element. ok is false when neither wrapper is present.
func splitDiagrams(data string) ([]rawDiagram, bool) {
	var file xmlFile
	if err := xml.Unmarshal([]byte(normalizeEntities(data)), &file); err == nil {
		out := make([]rawDiagram, len(file.Diagrams))
		for i, d := range file.Diagrams {
			out[i] = rawDiagram{name: d.Name, content: d.InnerXML}
		}
		return out, true
	}

	var single xmlDiagram
	if err := xml.Unmarshal([]byte(normalizeEntities(data)), &single); err == nil {
		return []rawDiagram{{name: single.Name, content: single.InnerXML}}, true
	}

	return nil, false
}

// decodePayload unwraps one page payload into mxGraphModel XML. The unwrap
// chain mirrors the encodings draw.io has shipped over the years: plain XML,
// URL encoding, base64 (standard and URL-safe alphabets) over raw DEFLATE,
// zlib, or gzip streams.
func decodePayload(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", errors.New(errors.ErrCodeDecodeFailed, "page payload is empty")
	}

	// Plain embedded XML.
	if strings.Contains(payload, modelTag) {
		return payload, nil
	}

	// URL-encoded XML.
	if unquoted, err := url.QueryUnescape(payload); err == nil && strings.Contains(unquoted, modelTag) {
		return unquoted, nil
	}

	decoded, err := decodeBase64(payload)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeDecodeFailed, err, "payload is not valid base64")
	}

	// Base64-wrapped but otherwise uncompressed XML.
	if bytes.Contains(decoded, []byte(modelTag)) {
		return string(decoded), nil
	}

	// draw.io compresses with raw DEFLATE over a URL-encoded model; older
	// exports used zlib or gzip framing. Try each in turn.
	inflaters := []func([]byte) ([]byte, error){inflateRaw, inflateZlib, inflateGzip}
	for _, inflate := range inflaters {
		out, err := inflate(decoded)
		if err != nil {
			continue
		}
		text := string(out)
		if unquoted, err := url.QueryUnescape(text); err == nil && strings.Contains(unquoted, modelTag) {
			return unquoted, nil
		}
		if strings.Contains(text, modelTag) {
			return text, nil
		}
	}

	return "", errors.New(errors.ErrCodeDecodeFailed,
		"payload did not decompress to diagram XML with any known encoding")
}

// decodeBase64 decodes with the standard alphabet first, then the URL-safe
// alphabet. Exports occasionally drop the trailing padding, so it is
// repaired before decoding.
func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	if n := len(s) % 4; n != 0 {
		s += strings.Repeat("=", 4-n)
	}

	decoded, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return decoded, nil
	}
	return base64.URLEncoding.DecodeString(s)
}

func inflateRaw(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	return io.ReadAll(r)
}

func inflateZlib(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func inflateGzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
