package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/flowmaid/pkg/cache"
	"github.com/matzehuels/flowmaid/pkg/errors"
)

const simpleModel = `<mxGraphModel dx="800" dy="600">
  <root>
    <mxCell id="0"/>
    <mxCell id="1" parent="0"/>
    <mxCell id="2" value="Start" style="ellipse;whiteSpace=wrap" vertex="1" parent="1"/>
    <mxCell id="3" value="End" style="rounded=1" vertex="1" parent="1"/>
    <mxCell id="4" style="dashed=1" edge="1" parent="1" source="2" target="3"/>
  </root>
</mxGraphModel>`

const unknownShapeModel = `<mxGraphModel>
  <root>
    <mxCell id="0"/>
    <mxCell id="1" parent="0"/>
    <mxCell id="2" value="Box" style="shape=mxgraph.aws.ec2" vertex="1" parent="1"/>
  </root>
</mxGraphModel>`

const cyclicModel = `<mxGraphModel>
  <root>
    <mxCell id="0"/>
    <mxCell id="1" parent="0"/>
    <mxCell id="2" value="a" vertex="1" parent="3"/>
    <mxCell id="3" value="b" vertex="1" parent="2"/>
  </root>
</mxGraphModel>`

const multiPageFile = `<mxfile>
  <diagram id="p1" name="First"><mxGraphModel><root>
    <mxCell id="0"/><mxCell id="1" parent="0"/>
    <mxCell id="2" value="alpha" vertex="1" parent="1"/>
  </root></mxGraphModel></diagram>
  <diagram id="p2" name="Second"><mxGraphModel><root>
    <mxCell id="0"/><mxCell id="1" parent="0"/>
    <mxCell id="2" value="beta" vertex="1" parent="1"/>
  </root></mxGraphModel></diagram>
</mxfile>`

// One decodable page next to one with an unrecoverable payload.
const partiallyCorruptFile = `<mxfile>
  <diagram id="p1" name="Bad">QUJDRA==</diagram>
  <diagram id="p2" name="Good"><mxGraphModel><root>
    <mxCell id="0"/><mxCell id="1" parent="0"/>
    <mxCell id="2" value="ok" vertex="1" parent="1"/>
  </root></mxGraphModel></diagram>
</mxfile>`

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return NewRunner(c, nil, nil)
}

func TestConvertSinglePage(t *testing.T) {
	r := newTestRunner(t)
	result, err := r.Convert(context.Background(), simpleModel, Options{})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if len(result.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(result.Pages))
	}
	page := result.Pages[0]
	if !strings.HasPrefix(page.Mermaid, "flowchart ") {
		t.Errorf("missing header:\n%s", page.Mermaid)
	}
	if !strings.Contains(page.Mermaid, `start(("Start"))`) {
		t.Errorf("missing ellipse declaration:\n%s", page.Mermaid)
	}
	if !strings.Contains(page.Mermaid, "start -.-> end_2") {
		t.Errorf("missing dashed connector:\n%s", page.Mermaid)
	}
	if page.Stats.Nodes != 2 || page.Stats.Edges != 1 {
		t.Errorf("stats = %+v", page.Stats)
	}
	if result.CacheHit {
		t.Error("first conversion should not be a cache hit")
	}
}

func TestConvertCacheRoundTrip(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	first, err := r.Convert(ctx, simpleModel, Options{})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	second, err := r.Convert(ctx, simpleModel, Options{})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !second.CacheHit {
		t.Error("second conversion should hit the cache")
	}
	if second.Pages[0].Mermaid != first.Pages[0].Mermaid {
		t.Error("cached output differs from fresh output")
	}

	// Refresh bypasses the cache.
	third, err := r.Convert(ctx, simpleModel, Options{Refresh: true})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if third.CacheHit {
		t.Error("refresh should not be served from cache")
	}
}

func TestConvertOptionsChangeCacheKey(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	if _, err := r.Convert(ctx, simpleModel, Options{Direction: "TD"}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	result, err := r.Convert(ctx, simpleModel, Options{Direction: "LR"})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if result.CacheHit {
		t.Error("different options should not share a cache entry")
	}
	if !strings.HasPrefix(result.Pages[0].Mermaid, "flowchart LR") {
		t.Errorf("direction override not applied:\n%s", result.Pages[0].Mermaid)
	}
}

func TestConvertStrict(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	// Relaxed: warning recorded, output produced.
	relaxed, err := r.Convert(ctx, unknownShapeModel, Options{})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	var found bool
	for _, w := range relaxed.Pages[0].Warnings {
		if w.Code == errors.ErrCodeUnrecognizedStyle {
			found = true
		}
	}
	if !found {
		t.Errorf("missing style warning, got %+v", relaxed.Pages[0].Warnings)
	}

	// Strict: the same warning aborts the conversion.
	_, err = r.Convert(ctx, unknownShapeModel, Options{Strict: true})
	if err == nil {
		t.Fatal("Convert() strict expected error")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeUnrecognizedStyle {
		t.Errorf("code = %s, want %s", got, errors.ErrCodeUnrecognizedStyle)
	}
	if errors.GetSourceID(err) != "2" {
		t.Errorf("source = %q, want 2", errors.GetSourceID(err))
	}
}

func TestConvertCyclicAlwaysFatal(t *testing.T) {
	r := newTestRunner(t)

	_, err := r.Convert(context.Background(), cyclicModel, Options{})
	if err == nil {
		t.Fatal("Convert() expected error")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeCyclicHierarchy {
		t.Errorf("code = %s, want %s", got, errors.ErrCodeCyclicHierarchy)
	}
}

func TestConvertPageSelection(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	result, err := r.Convert(ctx, multiPageFile, Options{Page: 1})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(result.Pages) != 1 || result.Pages[0].Name != "Second" {
		t.Fatalf("pages = %+v, want just Second", result.Pages)
	}
	if !strings.Contains(result.Pages[0].Mermaid, "beta") {
		t.Errorf("wrong page converted:\n%s", result.Pages[0].Mermaid)
	}

	_, err = r.Convert(ctx, multiPageFile, Options{Page: 5})
	if got := errors.GetCode(err); got != errors.ErrCodePageOutOfRange {
		t.Errorf("code = %s, want %s", got, errors.ErrCodePageOutOfRange)
	}
}

func TestConvertAllPages(t *testing.T) {
	r := newTestRunner(t)

	result, err := r.Convert(context.Background(), multiPageFile, Options{AllPages: true})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(result.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(result.Pages))
	}
	if result.Pages[0].Name != "First" || result.Pages[1].Name != "Second" {
		t.Errorf("page order: %q, %q", result.Pages[0].Name, result.Pages[1].Name)
	}
}

func TestConvertSkipsUndecodablePages(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	result, err := r.Convert(ctx, partiallyCorruptFile, Options{AllPages: true})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(result.Pages) != 1 || len(result.Skipped) != 1 {
		t.Fatalf("pages = %d, skipped = %d", len(result.Pages), len(result.Skipped))
	}
	if result.Skipped[0].Name != "Bad" || result.Skipped[0].Reason == "" {
		t.Errorf("skipped = %+v", result.Skipped[0])
	}

	// Strict mode refuses the document instead.
	_, err = r.Convert(ctx, partiallyCorruptFile, Options{AllPages: true, Strict: true})
	if got := errors.GetCode(err); got != errors.ErrCodeDecodeFailed {
		t.Errorf("code = %s, want %s", got, errors.ErrCodeDecodeFailed)
	}

	// Selecting the broken page surfaces its decode error directly.
	_, err = r.Convert(ctx, partiallyCorruptFile, Options{Page: 0})
	if got := errors.GetCode(err); got != errors.ErrCodeDecodeFailed {
		t.Errorf("code = %s, want %s", got, errors.ErrCodeDecodeFailed)
	}
}

func TestConvertShapeOverrides(t *testing.T) {
	r := newTestRunner(t)

	result, err := r.Convert(context.Background(), unknownShapeModel, Options{
		ShapeOverrides: map[string]string{"mxgraph.aws.ec2": "[[]]"},
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !strings.Contains(result.Pages[0].Mermaid, `box[["Box"]]`) {
		t.Errorf("override not applied:\n%s", result.Pages[0].Mermaid)
	}
	if len(result.Pages[0].Warnings) != 0 {
		t.Errorf("override should silence the style warning: %+v", result.Pages[0].Warnings)
	}
}

func TestConvertInvalidOptions(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	tests := []struct {
		name string
		opts Options
	}{
		{name: "BadDirection", opts: Options{Direction: "UP"}},
		{name: "NegativePage", opts: Options{Page: -1}},
		{name: "EmptyReservedWord", opts: Options{ReservedWords: []string{""}}},
		{name: "BadOverrideBrackets", opts: Options{ShapeOverrides: map[string]string{"hexagon": "<<>>"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Convert(ctx, simpleModel, tt.opts)
			if got := errors.GetCode(err); got != errors.ErrCodeInvalidOption {
				t.Errorf("code = %s, want %s", got, errors.ErrCodeInvalidOption)
			}
		})
	}
}

func TestConvertContextCancelled(t *testing.T) {
	r := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Convert(ctx, multiPageFile, Options{AllPages: true, Refresh: true})
	if err != context.Canceled {
		t.Errorf("Convert() error = %v, want context.Canceled", err)
	}
}
