package renderer

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts a markdown report into an HTML fragment.
func HTML(md string) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// HTMLPage wraps converted reports into a standalone HTML page.
func HTMLPage(title string, reports ...string) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", html.EscapeString(title))
	for _, md := range reports {
		if err := markdown.Convert([]byte(md), &buf); err != nil {
			return nil, fmt.Errorf("failed to convert markdown: %w", err)
		}
	}
	fmt.Fprint(&buf, "</body>\n</html>\n")
	return buf.Bytes(), nil
}
