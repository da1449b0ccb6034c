// internal/executor/content.go
package executor

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

// extractMarkdown converts the document body to GitHub-flavored Markdown,
// stripping scripts, styles and other non-content elements first. The length
// of the result doubles as the content-quality proxy.
func extractMarkdown(doc *goquery.Document, baseURL string) (string, error) {
	doc.Find("script, style, noscript, iframe, svg").Remove()

	body := doc.Find("body")
	html, err := body.Html()
	if err != nil || strings.TrimSpace(html) == "" {
		// Fragment documents (or parse oddities) may have no body element.
		if html, err = doc.Html(); err != nil {
			return "", fmt.Errorf("failed to render HTML: %w", err)
		}
	}

	converter := md.NewConverter(baseURL, true, nil)
	converter.Use(plugin.GitHubFlavored())

	content, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert to markdown: %w", err)
	}
	return strings.TrimSpace(content), nil
}

// markdownFromHTML is the string-input variant used by the browser renderers.
func markdownFromHTML(html, baseURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	return extractMarkdown(doc, baseURL)
}
