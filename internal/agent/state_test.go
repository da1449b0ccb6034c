package agent

import (
	"testing"

	"github.com/smartbook/scout/pkg/models"
)

func TestEncodeDeterministic(t *testing.T) {
	feats := models.PageFeatures{
		HTMLSize:      12000,
		HasScripts:    true,
		HasCaptcha:    false,
		HasSpinner:    true,
		PriorFailures: 1,
	}

	first := Encode(feats)
	for i := 0; i < 10; i++ {
		if got := Encode(feats); got != first {
			t.Fatalf("Encode not deterministic: %q != %q", got, first)
		}
	}
}

func TestEncodeSizeBuckets(t *testing.T) {
	tests := []struct {
		size int
		want string
	}{
		{models.SizeUnknown, "unknown"},
		{0, "tiny"},
		{2*1024 - 1, "tiny"},
		{2 * 1024, "small"},
		{32*1024 - 1, "small"},
		{32 * 1024, "medium"},
		{256*1024 - 1, "medium"},
		{256 * 1024, "large"},
		{5 * 1024 * 1024, "large"},
	}

	for _, tt := range tests {
		if got := sizeBucket(tt.size); got != tt.want {
			t.Errorf("sizeBucket(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestEncodeRetryBuckets(t *testing.T) {
	tests := []struct {
		failures int
		want     string
	}{
		{0, "0"},
		{1, "1"},
		{2, "2+"},
		{7, "2+"},
	}

	for _, tt := range tests {
		if got := retryBucket(tt.failures); got != tt.want {
			t.Errorf("retryBucket(%d) = %q, want %q", tt.failures, got, tt.want)
		}
	}
}

func TestEncodeDistinguishesFeatures(t *testing.T) {
	base := models.PageFeatures{HTMLSize: 500}
	variants := []models.PageFeatures{
		{HTMLSize: 500, HasScripts: true},
		{HTMLSize: 500, HasCaptcha: true},
		{HTMLSize: 500, HasSpinner: true},
		{HTMLSize: 500, PriorFailures: 1},
		{HTMLSize: 100000},
	}

	baseKey := Encode(base)
	for _, v := range variants {
		if Encode(v) == baseKey {
			t.Errorf("features %+v encode to the same key as %+v", v, base)
		}
	}
}

func TestEncodeSameBucketAliases(t *testing.T) {
	a := Encode(models.PageFeatures{HTMLSize: 3000, PriorFailures: 2})
	b := Encode(models.PageFeatures{HTMLSize: 20000, PriorFailures: 5})
	if a != b {
		t.Errorf("same-bucket features should alias: %q != %q", a, b)
	}
}
