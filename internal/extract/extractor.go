// Package extract decomposes page markup into candidate text blocks.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Block is one structural unit extracted from a page: its visible text,
// its serialized markup, and a locator back to the source element.
type Block struct {
	Text string
	HTML string
	Path string
}

// MinBlockLength is the minimum visible text length for a candidate block.
// Anything shorter is too small to be a meaningful passage.
const MinBlockLength = 20

// fallbackHTMLCap bounds the markup stored for the whole-body fallback block.
const fallbackHTMLCap = 2000

// strippedSelector matches elements whose text must never leak into results.
const strippedSelector = "script, style, noscript, iframe, svg"

// contentTags is the ordered set of structural tags scanned for candidates.
var contentTags = []string{
	"article", "section", "main", "header", "footer",
	"p", "h1", "h2", "h3", "li", "div",
}

// Extractor parses markup and produces candidate blocks. It does no
// deduplication or ranking, only structural decomposition.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses markup and returns candidate blocks in tag-scan order.
// If nothing survives the length filter it falls back to a single block
// covering the document body, so any non-empty page yields at least one
// candidate. A parse failure yields no candidates.
func (e *Extractor) Extract(markup string) []Block {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	doc.Find(strippedSelector).Remove()

	var blocks []Block
	for _, tag := range contentTags {
		doc.Find(tag).Each(func(_ int, sel *goquery.Selection) {
			text := visibleText(sel)
			if len(text) < MinBlockLength {
				return
			}
			outer, err := goquery.OuterHtml(sel)
			if err != nil {
				return
			}
			blocks = append(blocks, Block{
				Text: text,
				HTML: outer,
				Path: elementPath(sel, tag),
			})
		})
	}

	if len(blocks) == 0 {
		blocks = append(blocks, e.bodyFallback(doc))
	}

	return blocks
}

// bodyFallback builds a single block from the document body. The block may
// carry empty text (e.g. a script-only page); downstream chunking filters
// it out and the pipeline reports no content.
func (e *Extractor) bodyFallback(doc *goquery.Document) Block {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		body = doc.Selection
	}

	outer, _ := goquery.OuterHtml(body)
	if len(outer) > fallbackHTMLCap {
		outer = outer[:fallbackHTMLCap]
	}

	return Block{
		Text: visibleText(body),
		HTML: outer,
		Path: "/",
	}
}

// visibleText collects the text nodes under sel, whitespace-normalized and
// joined with single spaces so adjacent inline nodes don't run together.
func visibleText(sel *goquery.Selection) string {
	var words []string
	for _, node := range sel.Nodes {
		collectWords(node, &words)
	}
	return strings.Join(words, " ")
}

func collectWords(n *html.Node, words *[]string) {
	if n.Type == html.TextNode {
		*words = append(*words, strings.Fields(n.Data)...)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectWords(c, words)
	}
}

// elementPath builds a human-readable locator for an element: the tag name,
// suffixed with #id when present, else up to the first two class names.
func elementPath(sel *goquery.Selection, tag string) string {
	if id, ok := sel.Attr("id"); ok && id != "" {
		return tag + "#" + id
	}
	if class, ok := sel.Attr("class"); ok {
		names := strings.Fields(class)
		if len(names) > 2 {
			names = names[:2]
		}
		if len(names) > 0 {
			return tag + "." + strings.Join(names, ".")
		}
	}
	return tag
}
