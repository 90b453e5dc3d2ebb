package usecase

// DefaultConfidenceThreshold is the category confidence a classification must
// strictly exceed to be persisted without manual review.
const DefaultConfidenceThreshold = 0.6

// Accept reports whether confidence passes the gate. The boundary is rejected.
func Accept(confidence, threshold float64) bool {
	return confidence > threshold
}

type ConfidenceGate struct {
	threshold float64
}

func NewConfidenceGate(threshold float64) ConfidenceGate {
	if threshold < 0 || threshold > 1 {
		threshold = DefaultConfidenceThreshold
	}
	return ConfidenceGate{threshold: threshold}
}

func (g ConfidenceGate) Threshold() float64 {
	return g.threshold
}

func (g ConfidenceGate) Accept(confidence float64) bool {
	return Accept(confidence, g.threshold)
}
