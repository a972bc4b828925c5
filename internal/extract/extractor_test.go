package extract

import (
	"strings"
	"testing"
)

// TestExtract_StripsScripts verifies script text never leaks into candidates.
func TestExtract_StripsScripts(t *testing.T) {
	markup := `<html><body>
<p>This paragraph is long enough to pass the minimum length filter.</p>
<script>var secretScriptPayload = "should never appear";</script>
<style>.hidden { display: none; }</style>
<noscript>Enable JavaScript to continue using this application.</noscript>
</body></html>`

	extractor := NewExtractor()
	blocks := extractor.Extract(markup)

	if len(blocks) == 0 {
		t.Fatal("Expected at least one block")
	}
	for _, b := range blocks {
		if strings.Contains(b.Text, "secretScriptPayload") {
			t.Errorf("Block text contains script content: %q", b.Text)
		}
		if strings.Contains(b.Text, "display: none") {
			t.Errorf("Block text contains style content: %q", b.Text)
		}
		if strings.Contains(b.Text, "Enable JavaScript") {
			t.Errorf("Block text contains noscript content: %q", b.Text)
		}
	}
}

// TestExtract_MinLength verifies short elements are filtered out.
func TestExtract_MinLength(t *testing.T) {
	markup := `<html><body>
<p>short</p>
<p>This sentence is comfortably past twenty characters.</p>
</body></html>`

	extractor := NewExtractor()
	blocks := extractor.Extract(markup)

	for _, b := range blocks {
		if len(b.Text) < MinBlockLength {
			t.Errorf("Block with text %q is below minimum length %d", b.Text, MinBlockLength)
		}
		if b.Text == "short" {
			t.Errorf("Short element should have been filtered")
		}
	}
}

// TestExtract_PathBuilding checks the tag/#id/.class locator format.
func TestExtract_PathBuilding(t *testing.T) {
	markup := `<html><body>
<p id="intro">Identified paragraph with plenty of text in it.</p>
<p class="lead hero extra">Classed paragraph with plenty of text in it.</p>
<p>Bare paragraph with plenty of text inside of it.</p>
</body></html>`

	extractor := NewExtractor()
	blocks := extractor.Extract(markup)

	paths := make(map[string]bool)
	for _, b := range blocks {
		paths[b.Path] = true
	}

	for _, want := range []string{"p#intro", "p.lead.hero", "p"} {
		if !paths[want] {
			t.Errorf("Expected a block with path %q, got paths %v", want, paths)
		}
	}
	if paths["p.lead.hero.extra"] {
		t.Error("Path should use at most the first two class names")
	}
}

// TestExtract_IDTakesPrecedenceOverClass verifies id wins when both exist.
func TestExtract_IDTakesPrecedenceOverClass(t *testing.T) {
	markup := `<html><body>
<p id="main" class="lead">Paragraph with both an id and a class attribute.</p>
</body></html>`

	extractor := NewExtractor()
	blocks := extractor.Extract(markup)

	found := false
	for _, b := range blocks {
		if b.Path == "p#main" {
			found = true
		}
		if strings.HasPrefix(b.Path, "p.") {
			t.Errorf("Class path %q used despite id being present", b.Path)
		}
	}
	if !found {
		t.Error("Expected path p#main")
	}
}

// TestExtract_TextNormalization verifies inter-node text is space-separated
// and whitespace collapsed.
func TestExtract_TextNormalization(t *testing.T) {
	markup := `<html><body>
<p>Some   <b>bold</b>
and <i>italic</i>    words in a normal sentence.</p>
</body></html>`

	extractor := NewExtractor()
	blocks := extractor.Extract(markup)

	var para *Block
	for i := range blocks {
		if blocks[i].Path == "p" {
			para = &blocks[i]
			break
		}
	}
	if para == nil {
		t.Fatal("Expected a p block")
	}

	want := "Some bold and italic words in a normal sentence."
	if para.Text != want {
		t.Errorf("Text: expected %q, got %q", want, para.Text)
	}
}

// TestExtract_MarkupPreserved verifies each block carries its serialized markup.
func TestExtract_MarkupPreserved(t *testing.T) {
	markup := `<html><body>
<p>Hello world this is a test paragraph with enough length to pass the filter.</p>
</body></html>`

	extractor := NewExtractor()
	blocks := extractor.Extract(markup)

	found := false
	for _, b := range blocks {
		if b.Path == "p" {
			found = true
			if !strings.Contains(b.HTML, "<p>") {
				t.Errorf("Block markup missing <p> tag: %q", b.HTML)
			}
		}
	}
	if !found {
		t.Fatal("Expected a p block")
	}
}

// TestExtract_BodyFallback verifies a page with no qualifying elements
// falls back to a single body block with path "/".
func TestExtract_BodyFallback(t *testing.T) {
	markup := `<html><body>Loose body text that belongs to no structural element at all.</body></html>`

	extractor := NewExtractor()
	blocks := extractor.Extract(markup)

	if len(blocks) != 1 {
		t.Fatalf("Expected 1 fallback block, got %d", len(blocks))
	}
	if blocks[0].Path != "/" {
		t.Errorf("Fallback path: expected \"/\", got %q", blocks[0].Path)
	}
	if !strings.Contains(blocks[0].Text, "Loose body text") {
		t.Errorf("Fallback text missing body content: %q", blocks[0].Text)
	}
}

// TestExtract_FallbackMarkupCap verifies fallback markup is truncated.
func TestExtract_FallbackMarkupCap(t *testing.T) {
	// A body with only short elements, but lots of markup.
	markup := "<html><body>" + strings.Repeat("<span>hi</span>", 500) + "</body></html>"

	extractor := NewExtractor()
	blocks := extractor.Extract(markup)

	if len(blocks) != 1 {
		t.Fatalf("Expected 1 fallback block, got %d", len(blocks))
	}
	if len(blocks[0].HTML) > fallbackHTMLCap {
		t.Errorf("Fallback markup length %d exceeds cap %d", len(blocks[0].HTML), fallbackHTMLCap)
	}
}

// TestExtract_ScriptOnlyPage verifies a script-only page yields the fallback
// block with empty text, which the chunker then drops.
func TestExtract_ScriptOnlyPage(t *testing.T) {
	markup := `<html><body><script>console.log("nothing visible here at all");</script></body></html>`

	extractor := NewExtractor()
	blocks := extractor.Extract(markup)

	if len(blocks) != 1 {
		t.Fatalf("Expected 1 fallback block, got %d", len(blocks))
	}
	if blocks[0].Path != "/" {
		t.Errorf("Fallback path: expected \"/\", got %q", blocks[0].Path)
	}
	if blocks[0].Text != "" {
		t.Errorf("Expected empty fallback text, got %q", blocks[0].Text)
	}
}

// TestExtract_NestedContainers verifies containers and their children can
// both appear as candidates; overlap is handled downstream by dedup.
func TestExtract_NestedContainers(t *testing.T) {
	markup := `<html><body>
<div id="wrap"><p>Inner paragraph text long enough to qualify on its own.</p></div>
</body></html>`

	extractor := NewExtractor()
	blocks := extractor.Extract(markup)

	paths := make(map[string]bool)
	for _, b := range blocks {
		paths[b.Path] = true
	}
	if !paths["p"] || !paths["div#wrap"] {
		t.Errorf("Expected both p and div#wrap candidates, got %v", paths)
	}
}
