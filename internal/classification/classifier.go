package classification

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
)

// Labels is the fixed finding vocabulary, in hash-index order.
var Labels = []string{"normal", "potential_abnormality", "urgent_finding", "unknown"}

// HashModelVersion identifies the hash classifier in analysis documents.
const HashModelVersion = "v0.1-stub"

// Finding is one classifier verdict.
type Finding struct {
	Label        string
	Confidence   float64
	ModelVersion string
}

// Classifier derives a finding for an artifact. Implementations must be
// deterministic for a given key so re-runs converge.
type Classifier interface {
	Classify(ctx context.Context, imageKey string) (Finding, error)
}

// HashClassifier derives a label and confidence from sha256(imageKey). It is
// the placeholder for a real inference call behind the same interface.
type HashClassifier struct{}

func (HashClassifier) Classify(_ context.Context, imageKey string) (Finding, error) {
	sum := sha256.Sum256([]byte(imageKey))
	h := hex.EncodeToString(sum[:])

	idx, _ := strconv.ParseUint(h[0:2], 16, 8)
	conf, _ := strconv.ParseUint(h[2:4], 16, 8)

	return Finding{
		Label: Labels[int(idx)%len(Labels)],
		// Confidence floor: always in [0.50, 0.99].
		Confidence:   round2(float64(conf%50+50) / 100),
		ModelVersion: HashModelVersion,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
