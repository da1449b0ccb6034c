// internal/agent/state.go
package agent

import (
	"fmt"

	"github.com/smartbook/scout/pkg/models"
)

// StateKey is a discrete, hashable key derived from page features. Identical
// feature tuples always encode to the identical key; distinct tuples may alias
// only through the documented bucketing below.
type StateKey string

// Size bucket boundaries in bytes. Pages inside the same band are treated as
// equivalent for strategy selection.
const (
	sizeTinyMax   = 2 * 1024
	sizeSmallMax  = 32 * 1024
	sizeMediumMax = 256 * 1024
)

// Encode turns page features into a state key.
//
// Bucketing rules:
//   - HTML size: unknown / tiny (<2KB) / small (<32KB) / medium (<256KB) / large
//   - scripts, captcha, spinner: raw booleans
//   - prior failures: 0 / 1 / 2+ (capped, the exact count beyond 2 is irrelevant)
//
// Missing or unknown values map to designated buckets; Encode never fails and
// has no side effects.
func Encode(f models.PageFeatures) StateKey {
	return StateKey(fmt.Sprintf("size=%s|js=%t|captcha=%t|spinner=%t|retries=%s",
		sizeBucket(f.HTMLSize),
		f.HasScripts,
		f.HasCaptcha,
		f.HasSpinner,
		retryBucket(f.PriorFailures),
	))
}

func sizeBucket(size int) string {
	switch {
	case size < 0:
		return "unknown"
	case size < sizeTinyMax:
		return "tiny"
	case size < sizeSmallMax:
		return "small"
	case size < sizeMediumMax:
		return "medium"
	default:
		return "large"
	}
}

func retryBucket(failures int) string {
	switch {
	case failures <= 0:
		return "0"
	case failures == 1:
		return "1"
	default:
		return "2+"
	}
}
