package main

import (
	"fmt"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// isHTMLPath reports whether a file is subject to --html-to-markdown.
func isHTMLPath(path string) bool {
	switch filepath.Ext(path) {
	case ".html", ".htm":
		return true
	}
	return false
}

// htmlToMarkdown converts HTML content to Markdown, dropping script and
// style elements first. This approximates the text a caller would actually
// submit from a rendered document, which carries far fewer tokens than the
// raw markup.
func htmlToMarkdown(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}
	doc.Find("script, style").Remove()

	cleaned, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("serialize HTML: %w", err)
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(cleaned)
	if err != nil {
		return "", fmt.Errorf("convert HTML to Markdown: %w", err)
	}
	return markdown, nil
}
