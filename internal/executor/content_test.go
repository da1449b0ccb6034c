package executor

import (
	"strings"
	"testing"
)

func TestMarkdownFromHTML(t *testing.T) {
	html := `<html><head><style>p {}</style></head><body>
<h1>Title</h1>
<p>A <em>styled</em> paragraph with a <a href="https://example.com/x">link</a>.</p>
<script>ignore();</script>
<ul><li>first</li><li>second</li></ul>
</body></html>`

	got, err := markdownFromHTML(html, "https://example.com")
	if err != nil {
		t.Fatalf("markdownFromHTML failed: %v", err)
	}

	for _, want := range []string{"# Title", "*styled*", "[link](https://example.com/x)", "- first"} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "ignore()") {
		t.Error("script text leaked into markdown")
	}
}

func TestMarkdownFromHTMLFragment(t *testing.T) {
	got, err := markdownFromHTML(`<p>just a fragment</p>`, "")
	if err != nil {
		t.Fatalf("markdownFromHTML failed: %v", err)
	}
	if !strings.Contains(got, "just a fragment") {
		t.Fatalf("fragment text lost: %q", got)
	}
}
