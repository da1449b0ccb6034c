// internal/executor/probe.go
package executor

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/smartbook/scout/pkg/models"
)

// Selectors that mark a page as obstructed. Matching any captcha selector sets
// the captcha flag; spinners likewise.
var (
	captchaSelectors = []string{"#captcha-challenge", ".captcha", ".g-recaptcha", ".h-captcha"}
	spinnerSelectors = []string{".loading", ".spinner", "[aria-busy='true']"}
)

// Probe fetches the target cheaply over HTTP and derives the page features
// used for state encoding. A failed probe is not an error: it yields features
// with an unknown size so the encoder maps them to the unknown bucket.
func (r *Runner) Probe(ctx context.Context, target string) models.PageFeatures {
	probeCtx := ctx
	if r.opts.Timeouts.Probe > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, r.opts.Timeouts.Probe)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, target, nil)
	if err != nil {
		return unknownFeatures(target, err)
	}
	req.Header.Set("User-Agent", r.opts.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return unknownFeatures(target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return unknownFeatures(target, err)
	}

	return FeaturesFromHTML(string(body))
}

// FeaturesFromHTML derives page features from raw HTML.
func FeaturesFromHTML(html string) models.PageFeatures {
	feats := models.PageFeatures{HTMLSize: len(html)}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return feats
	}

	feats.HasScripts = doc.Find("script").Length() > 0
	feats.HasCaptcha = matchesAny(doc, captchaSelectors)
	feats.HasSpinner = matchesAny(doc, spinnerSelectors)
	return feats
}

func matchesAny(doc *goquery.Document, selectors []string) bool {
	for _, sel := range selectors {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}

func unknownFeatures(target string, err error) models.PageFeatures {
	log.Debug().Err(err).Str("url", target).Msg("Probe failed, using unknown features")
	return models.PageFeatures{HTMLSize: models.SizeUnknown}
}
