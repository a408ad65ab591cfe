package crawler

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"shipscan/pkg/utils"
)

// countryBlockDepth is how many ancestors separate the "(ISO)" label from its country block.
const countryBlockDepth = 4

var strs = utils.NewStringHelper()

var (
	// ErrCountryNotListed indicates the index page has no block for an ISO code.
	ErrCountryNotListed = errors.New("country not listed on index page")
	// ErrMalformedIndex indicates the "(ISO)" label sits too shallow in the document.
	ErrMalformedIndex = errors.New("malformed index page")
)

// PortLink is one seaport entry of a country block.
type PortLink struct {
	Name string
	Href string
}

// PageOptions controls port page extraction.
type PageOptions struct {
	ImportClass string
	ExportClass string
	LinesStride int
}

// PortPage is the extracted content of one port page.
type PortPage struct {
	Lines              []string
	ImportRestrictions string
	ExportRestrictions string
}

// Index is a parsed port-info index page.
type Index struct {
	root *html.Node
}

// ParseIndex parses the port-info index page.
func ParseIndex(r io.Reader) (*Index, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse index page: %w", err)
	}

	return &Index{root: doc}, nil
}

// Ports returns the seaports listed under iso, pairing names and links by position.
func (idx *Index) Ports(iso string) ([]PortLink, error) {
	label := "(" + iso + ")"

	node := findFirst(idx.root, func(n *html.Node) bool {
		return n.Type == html.TextNode && strings.TrimSpace(n.Data) == label
	})
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrCountryNotListed, iso)
	}

	block := node
	for range countryBlockDepth {
		if block.Parent == nil {
			return nil, fmt.Errorf("%w: %s label has no country block", ErrMalformedIndex, iso)
		}

		block = block.Parent
	}

	names := findAll(block, isElement("p"))
	links := findAll(block, isElement("a"))

	ports := make([]PortLink, 0, min(len(names), len(links)))
	for i := range min(len(names), len(links)) {
		ports = append(ports, PortLink{
			Name: strs.NormalizeWhitespace(textOf(names[i])),
			Href: attr(links[i], "href"),
		})
	}

	return ports, nil
}

// ParsePortPage extracts shipping lines and restrictions from a port page.
func ParsePortPage(r io.Reader, opts PageOptions) (*PortPage, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse port page: %w", err)
	}

	stride := opts.LinesStride
	if stride < 1 {
		stride = 1
	}

	var cells []string
	for _, table := range findAll(doc, isElement("table")) {
		for _, td := range findAll(table, isElement("td")) {
			cells = append(cells, strs.NormalizeWhitespace(textOf(td)))
		}
	}

	var lines []string
	for i := 0; i < len(cells); i += stride {
		if cells[i] != "" {
			lines = append(lines, cells[i])
		}
	}

	slices.Sort(lines)

	return &PortPage{
		Lines:              slices.Compact(lines),
		ImportRestrictions: classText(doc, opts.ImportClass),
		ExportRestrictions: classText(doc, opts.ExportClass),
	}, nil
}

// classText returns the normalized text of the first div carrying class, or "".
func classText(doc *html.Node, class string) string {
	if class == "" {
		return ""
	}

	div := findFirst(doc, func(n *html.Node) bool {
		return isElement("div")(n) && slices.Contains(strings.Fields(attr(n, "class")), class)
	})
	if div == nil {
		return ""
	}

	return strs.NormalizeWhitespace(textOf(div))
}

func isElement(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	for n := range root.Descendants() {
		if match(n) {
			return n
		}
	}

	return nil
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node

	for n := range root.Descendants() {
		if match(n) {
			out = append(out, n)
		}
	}

	return out
}

func textOf(n *html.Node) string {
	var b strings.Builder

	for d := range n.Descendants() {
		if d.Type == html.TextNode {
			b.WriteString(d.Data)
		}
	}

	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}

	return ""
}
