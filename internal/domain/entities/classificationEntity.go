package entities

// ClassificationResult is the audited output of the confidence modulator.
type ClassificationResult struct {
	RawConfidence      float64 `json:"raw_confidence" bson:"raw_confidence"`
	AdjustedConfidence float64 `json:"adjusted_confidence" bson:"adjusted_confidence"`
	BaseThreshold      float64 `json:"base_threshold" bson:"base_threshold"`
	AdjustedThreshold  float64 `json:"adjusted_threshold" bson:"adjusted_threshold"`
	ThresholdDelta     float64 `json:"threshold_delta" bson:"threshold_delta"`
	ConfidenceDelta    float64 `json:"confidence_delta" bson:"confidence_delta"`
	IsSpam             bool    `json:"is_spam" bson:"is_spam"`
	Flipped            string  `json:"flipped,omitempty" bson:"flipped,omitempty"`
}

const (
	FlipFalseNegative = "false_negative"
	FlipFalsePositive = "false_positive"
)

type Route string

const (
	RouteReject      Route = "reject"
	RouteInterrogate Route = "interrogate"
	RouteForward     Route = "forward"
)

// Decision is the combined routing verdict of the decision engine.
type Decision struct {
	Route                Route                 `json:"route"`
	Combined             float64               `json:"combined_confidence"`
	ReputationConfidence float64               `json:"reputation_confidence"`
	Reputation           *ReputationRecord     `json:"reputation,omitempty"`
	Classification       *ClassificationResult `json:"classification,omitempty"`
	ShortCircuited       bool                  `json:"short_circuited"`
	OverrideTerm         string                `json:"override_term,omitempty"`
	Degraded             []string              `json:"degraded,omitempty"`
}

// ContentConfidence is the layer-2 adjusted confidence, or zero when layer 2 did not run.
func (d Decision) ContentConfidence() float64 {
	if d.Classification == nil {
		return 0
	}
	return d.Classification.AdjustedConfidence
}
