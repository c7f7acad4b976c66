package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"call-sentinel/internal/domain/entities"
	"call-sentinel/internal/domain/interfaces/repository"
	Iservices "call-sentinel/internal/domain/interfaces/services"
	"call-sentinel/internal/infra/logger"
	"call-sentinel/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// EscalationThreshold is the combined confidence at which a call is interrogated.
const EscalationThreshold = 0.5

// DecisionEngine combines reputation (layer 1) with content classification
// and modulation (layer 2) into one routing decision.
type DecisionEngine struct {
	Reputation             Iservices.IReputationService
	Classifier             Iservices.IClassifierService
	Modulator              *ConfidenceModulator
	Overrides              KeywordOverrides
	Logger                 *logger.Logger
	ShortCircuitConfidence float64
	Timeout                time.Duration
}

func NewDecisionEngine(reputation Iservices.IReputationService, classifier Iservices.IClassifierService, modulator *ConfidenceModulator, overrides KeywordOverrides, logger *logger.Logger) *DecisionEngine {
	return &DecisionEngine{
		Reputation:             reputation,
		Classifier:             classifier,
		Modulator:              modulator,
		Overrides:              overrides,
		Logger:                 logger,
		ShortCircuitConfidence: 0.95,
		Timeout:                5 * time.Second,
	}
}

// Triage classifies a call at setup from its number and metadata only.
func (de *DecisionEngine) Triage(ctx context.Context, call *entities.CallContext) entities.Decision {
	return de.evaluate(ctx, call, nil, "triage")
}

// Classify re-scores a call with the caller's latest utterance.
func (de *DecisionEngine) Classify(ctx context.Context, call *entities.CallContext, utterance *entities.Utterance) entities.Decision {
	return de.evaluate(ctx, call, utterance, "turn")
}

func (de *DecisionEngine) evaluate(ctx context.Context, call *entities.CallContext, utterance *entities.Utterance, stage string) entities.Decision {
	var decision entities.Decision

	record, degraded := de.lookup(ctx, call)
	if degraded {
		decision.Degraded = append(decision.Degraded, "reputation")
	}
	if record != nil {
		decision.Reputation = record
		if record.IsSpam {
			decision.ReputationConfidence = record.Confidence
		}
	}

	if record != nil && record.IsSpam && record.Confidence >= de.ShortCircuitConfidence {
		decision.Route = entities.RouteReject
		decision.ShortCircuited = true
		decision.Combined = record.Confidence
		metrics.ShortCircuits.Inc()
		metrics.Decisions.WithLabelValues(stage, string(decision.Route)).Inc()
		return decision
	}

	text := describeCall(call)
	if utterance != nil {
		text = utterance.Text
	}

	result, err := de.classify(ctx, text, call.Metadata)
	if err != nil {
		decision.Degraded = append(decision.Degraded, "classifier")
		metrics.Degradations.WithLabelValues("classifier").Inc()
		de.Logger.Warn(fmt.Sprintf("Classifier unavailable, treating as not spam: %v", err), logrus.Fields{
			"session_id": call.SessionID,
			"caller":     call.CallerNumber,
			"dependency": "classifier",
		})
	}
	decision.Classification = &result

	combined := max(decision.ReputationConfidence, result.AdjustedConfidence)
	if utterance != nil {
		if rule, ok := de.Overrides.Match(utterance.Text); ok && rule.Confidence > combined {
			combined = rule.Confidence
			decision.OverrideTerm = rule.Term
		}
	}
	decision.Combined = combined

	switch {
	case combined >= EscalationThreshold || result.IsSpam:
		decision.Route = entities.RouteInterrogate
	case utterance == nil && record == nil:
		// Never-seen number and nothing said yet: inconclusive.
		decision.Route = entities.RouteInterrogate
	default:
		decision.Route = entities.RouteForward
	}

	metrics.Decisions.WithLabelValues(stage, string(decision.Route)).Inc()
	return decision
}

// lookup fails open: any error, including a timeout, yields no record.
func (de *DecisionEngine) lookup(ctx context.Context, call *entities.CallContext) (*entities.ReputationRecord, bool) {
	if call.CallerNumber == "" {
		return nil, false
	}
	record, err := runBounded(ctx, de.Timeout, func(ctx context.Context) (*entities.ReputationRecord, error) {
		return de.Reputation.Lookup(ctx, call.CallerNumber)
	})
	if err == nil {
		return record, false
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false
	}
	metrics.Degradations.WithLabelValues("reputation").Inc()
	de.Logger.Warn(fmt.Sprintf("Reputation lookup degraded: %v", err), logrus.Fields{
		"session_id": call.SessionID,
		"caller":     call.CallerNumber,
		"dependency": "reputation",
	})
	return nil, true
}

// classify returns a not-spam result alongside any classifier error.
func (de *DecisionEngine) classify(ctx context.Context, text string, metadata map[string]string) (entities.ClassificationResult, error) {
	start := time.Now()
	raw, err := runBounded(ctx, de.Timeout, func(ctx context.Context) (float64, error) {
		return de.Classifier.Score(ctx, text, metadata)
	})
	metrics.ClassifierLatency.WithLabelValues(de.Classifier.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		return entities.ClassificationResult{
			BaseThreshold:     EscalationThreshold,
			AdjustedThreshold: EscalationThreshold,
		}, err
	}
	return de.Modulator.Adjust(raw, EscalationThreshold), nil
}

// describeCall is the text scored at triage, before the caller has said anything.
func describeCall(call *entities.CallContext) string {
	if call.CallerNumber == "" {
		return "Incoming call from unknown number"
	}
	return "Incoming call from " + call.CallerNumber
}
