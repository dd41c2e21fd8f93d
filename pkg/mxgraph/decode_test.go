package mxgraph

import (
	"strings"
	"testing"

	"github.com/matzehuels/flowmaid/pkg/errors"
)

// deflatedStart is a raw-DEFLATE, base64-encoded, URL-escaped model holding a
// single "Start" ellipse vertex — the encoding current draw.io exports use.
const deflatedStart = "jVFBDoIwEHxN74Ua41lET554QSMb2qQVUlYov3dxC+iBxEuzM7uz7UyFKny8Bd2Ze1uDE7mso1AXkecnKemciYmJIxOqFKoIbYtc+ViAm3W25jFWXXe6Ge/sdIAn/iPIWTBo9wJmKtQBme1xcoklle16AufRWISq04+5M5I14gx6RyjdPkBAiLsPylabFA20HjBMNJIEhxTL9AtHW6NJ+mRJGrCNwSU95nTPuFkXb+apSP4XuOX86X19lCrf"

// zlibEnd and gzipEnd hold a single "End" rounded vertex with zlib and gzip
// framing respectively, as produced by older exports.
const zlibEnd = "eNplTzsOgzAMvYrlCwBt1aUJS1UxdeoJosYikQJBwTRw+zqiC+rkZ72Pn9WwdslM7hkthValGLlVw3qnEMBbjTVWh71BmEyikf+pM8LHhIU0PkaLMPMWBKe4jJasbm7ZeabXZN6ks5wUNSWm9ZDZYInsKA7EaQMhL3WNsJWJkL1lJ6KTYEe+d+K4Cjazxv7nKaWqvZWA/Z/q8OQXlBVObA=="

const gzipEnd = "H4sIABzNk2oC/2VPOw6DMAy9iuULAG3VpQlLVTF16gmixiKRAkHBNHD7OqIL6uRnvY+f1bB2yUzuGS2FVqUYuVXDeqcQwFuNNVaHvUGYTKKR/6kzwseEhTQ+Rosw8xYEp7iMlqxubtl5ptdk3qSznBQ1Jab1kNlgiewoDsRpAyEvdY2wlYmQvWUnopNgR7534rgKNrPG/ucppaq9lYD9n+rw5BcNdzVZ8wAAAA=="

func TestExtractPagesPlainModel(t *testing.T) {
	data := `<mxGraphModel><root><mxCell id="0"/><mxCell id="1" parent="0"/></root></mxGraphModel>`

	doc, err := ExtractPages(data)
	if err != nil {
		t.Fatalf("ExtractPages() error = %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("len(Pages) = %d, want 1", len(doc.Pages))
	}
	if doc.Pages[0].XML != data {
		t.Errorf("page XML was altered")
	}
}

func TestExtractPagesCompressed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		label   string
	}{
		{"RawDeflateURLEncoded", deflatedStart, "Start"},
		{"ZlibFramed", zlibEnd, "End"},
		{"GzipFramed", gzipEnd, "End"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := `<mxfile host="app.diagrams.net"><diagram id="p1" name="Page-1">` + tt.payload + `</diagram></mxfile>`

			doc, err := ExtractPages(data)
			if err != nil {
				t.Fatalf("ExtractPages() error = %v", err)
			}
			if len(doc.Pages) != 1 || len(doc.Failed) != 0 {
				t.Fatalf("pages = %d, failed = %d, want 1/0", len(doc.Pages), len(doc.Failed))
			}
			p := doc.Pages[0]
			if p.Name != "Page-1" {
				t.Errorf("Name = %q, want Page-1", p.Name)
			}
			if !strings.Contains(p.XML, "<mxGraphModel") {
				t.Errorf("decoded XML missing model tag: %q", p.XML)
			}
			if !strings.Contains(p.XML, tt.label) {
				t.Errorf("decoded XML missing label %q", tt.label)
			}
		})
	}
}

func TestExtractPagesBase64WithoutPadding(t *testing.T) {
	payload := strings.TrimRight(zlibEnd, "=")
	data := `<mxfile><diagram name="p">` + payload + `</diagram></mxfile>`

	doc, err := ExtractPages(data)
	if err != nil {
		t.Fatalf("ExtractPages() error = %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("pages = %d, want 1 (failed: %+v)", len(doc.Pages), doc.Failed)
	}
}

func TestExtractPagesEmbeddedPlainPages(t *testing.T) {
	data := `<mxfile>
		<diagram name="First"><mxGraphModel><root><mxCell id="0"/></root></mxGraphModel></diagram>
		<diagram name="Second"><mxGraphModel><root><mxCell id="0"/></root></mxGraphModel></diagram>
	</mxfile>`

	doc, err := ExtractPages(data)
	if err != nil {
		t.Fatalf("ExtractPages() error = %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(doc.Pages))
	}
	if doc.Pages[0].Name != "First" || doc.Pages[1].Name != "Second" {
		t.Errorf("page names = %q, %q", doc.Pages[0].Name, doc.Pages[1].Name)
	}
	if doc.Pages[1].Index != 1 {
		t.Errorf("second page Index = %d, want 1", doc.Pages[1].Index)
	}
}

func TestExtractPagesCorruptPayload(t *testing.T) {
	data := `<mxfile>
		<diagram name="Good"><mxGraphModel><root/></mxGraphModel></diagram>
		<diagram name="Bad">!!!not-base64!!!</diagram>
	</mxfile>`

	doc, err := ExtractPages(data)
	if err != nil {
		t.Fatalf("ExtractPages() error = %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Errorf("pages = %d, want 1", len(doc.Pages))
	}
	if len(doc.Failed) != 1 {
		t.Fatalf("failed = %d, want 1", len(doc.Failed))
	}
	f := doc.Failed[0]
	if f.Name != "Bad" || f.Index != 1 {
		t.Errorf("failed page = %q index %d, want Bad/1", f.Name, f.Index)
	}
	if !errors.Is(f.Err, errors.ErrCodeDecodeFailed) {
		t.Errorf("failed page error = %v, want DECODE_FAILED", f.Err)
	}
}

func TestExtractPagesRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"Empty", ""},
		{"Whitespace", "   \n\t  "},
		{"NotADiagram", "<html><body>hello</body></html>"},
		{"PlainText", "just some text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractPages(tt.data)
			if err == nil {
				t.Fatal("ExtractPages() = nil error, want INVALID_INPUT")
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestListPages(t *testing.T) {
	data := `<mxfile>
		<diagram name="Overview"><mxGraphModel><root/></mxGraphModel></diagram>
		<diagram name="Detail"><mxGraphModel><root/></mxGraphModel></diagram>
	</mxfile>`

	names, err := ListPages(data)
	if err != nil {
		t.Fatalf("ListPages() error = %v", err)
	}
	want := []string{"Overview", "Detail"}
	if len(names) != len(want) {
		t.Fatalf("len(names) = %d, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
