package portal

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// InnerText approximates what a browser renders for a selection: text of
// every node outside <script> and <style>, with whitespace collapsed.
func InnerText(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, n := range sel.Nodes {
		writeText(n, &buffer)
	}
	return strings.Join(strings.Fields(buffer.String()), " ")
}

func writeText(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	switch node.Type {
	case html.TextNode:
		buffer.WriteString(node.Data)
		return
	case html.ElementNode:
		switch node.Data {
		case "script", "style", "noscript":
			return
		case "br":
			buffer.WriteByte(' ')
			return
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		writeText(child, buffer)
	}
	if node.Type == html.ElementNode {
		switch node.Data {
		case "p", "div", "li", "td", "th", "tr":
			buffer.WriteByte(' ')
		}
	}
}
