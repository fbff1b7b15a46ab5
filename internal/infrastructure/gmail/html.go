package gmail

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// htmlToText strips markup and returns every text node outside script, style
// and template elements, one per line. Head text such as the title is kept.
func htmlToText(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	// With scripting disabled noscript content is parsed as markup, not raw text.
	root, err := html.ParseWithOptions(strings.NewReader(content), html.ParseOptionEnableScripting(false))
	if err != nil {
		return strings.TrimSpace(content)
	}
	doc := goquery.NewDocumentFromNode(root)

	doc.Find("script, style, template").Remove()

	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				lines = append(lines, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
