// internal/executor/static.go
package executor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"

	"github.com/smartbook/scout/internal/retry"
)

// maxBodyBytes caps how much HTML a static fetch will read.
const maxBodyBytes = 8 * 1024 * 1024

// staticFetch retrieves the page over plain HTTP and extracts its content
// without a browser. Inline scripts are evaluated in a stub JS environment so
// data that trivial inline JS assigns to globals still surfaces.
func (r *Runner) staticFetch(ctx context.Context, target string) (string, error) {
	var html string

	err := retry.WithRetry(ctx, r.opts.Retry, func() error {
		fetched, err := r.fetchHTML(ctx, target)
		if err != nil {
			return err
		}
		html = fetched
		return nil
	})
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	content, err := extractMarkdown(doc, target)
	if err != nil {
		return "", err
	}

	if extras := runInlineScripts(target, doc); extras != "" {
		content += "\n\n" + extras
	}

	return content, nil
}

func (r *Runner) fetchHTML(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", r.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", retry.HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(body), nil
}

// runInlineScripts executes inline <script> elements in a minimal mocked
// browser environment and renders any non-standard globals they assigned.
// Most real-world scripts fail against the stub DOM; those failures are
// expected and ignored.
func runInlineScripts(target string, doc *goquery.Document) string {
	vm := goja.New()

	vm.Set("window", vm.GlobalObject())
	vm.Set("self", vm.GlobalObject())
	vm.Set("document", map[string]interface{}{
		"location": map[string]interface{}{"href": target},
	})
	vm.Set("location", map[string]interface{}{"href": target})
	vm.Set("console", map[string]interface{}{
		"log":   func(call goja.FunctionCall) goja.Value { return nil },
		"error": func(call goja.FunctionCall) goja.Value { return nil },
	})

	ran := 0
	doc.Find("script").Each(func(i int, sel *goquery.Selection) {
		// Skip external scripts
		if _, exists := sel.Attr("src"); exists {
			return
		}
		src := sel.Text()
		if src == "" {
			return
		}
		if _, err := vm.RunString(src); err == nil {
			ran++
		}
	})
	if ran == 0 {
		return ""
	}

	var captured []string
	for _, key := range vm.GlobalObject().Keys() {
		if isStandardGlobal(key) {
			continue
		}
		val := vm.Get(key)
		if val == nil {
			continue
		}
		exported := val.Export()
		if exported == nil {
			continue
		}
		if _, isFunc := goja.AssertFunction(val); isFunc {
			continue
		}
		captured = append(captured, fmt.Sprintf("%s: %v", key, exported))
	}
	if len(captured) == 0 {
		return ""
	}
	sort.Strings(captured)

	log.Debug().Int("globals", len(captured)).Str("url", target).Msg("Inline scripts surfaced data")
	return strings.Join(captured, "\n")
}

func isStandardGlobal(key string) bool {
	standards := map[string]bool{
		"window": true, "self": true, "document": true, "location": true, "console": true,
		"Object": true, "Array": true, "String": true, "Number": true, "Boolean": true,
		"Date": true, "Math": true, "JSON": true, "RegExp": true, "Error": true,
		"Function": true, "parseInt": true, "parseFloat": true, "isNaN": true,
		"isFinite": true, "encodeURI": true, "decodeURI": true, "encodeURIComponent": true,
		"decodeURIComponent": true, "undefined": true, "NaN": true, "Infinity": true,
		"globalThis": true, "eval": true, "escape": true, "unescape": true,
	}
	return standards[key]
}
