package services

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/keyword_model.yaml
var defaultKeywordModel []byte

type WeightedTerm struct {
	Term   string  `yaml:"term"`
	Weight float64 `yaml:"weight"`
}

// KeywordModel is the trained state of the keyword classifier.
type KeywordModel struct {
	SpamTerms     []WeightedTerm `yaml:"spam_terms"`
	BenignTerms   []WeightedTerm `yaml:"benign_terms"`
	BenignDamping float64        `yaml:"benign_damping"`
}

// LoadKeywordModel reads a model file, or the built-in model when path is empty.
func LoadKeywordModel(path string) (KeywordModel, error) {
	raw := defaultKeywordModel
	if path != "" {
		var err error
		if raw, err = os.ReadFile(path); err != nil {
			return KeywordModel{}, fmt.Errorf("read keyword model: %w", err)
		}
	}
	var model KeywordModel
	if err := yaml.Unmarshal(raw, &model); err != nil {
		return KeywordModel{}, fmt.Errorf("parse keyword model: %w", err)
	}
	return model, nil
}

// KeywordClassifierService scores text as the noisy-OR of matched spam-term weights,
// damped by matched benign terms. It is deterministic for a given model.
type KeywordClassifierService struct {
	spam    []WeightedTerm
	benign  []WeightedTerm
	damping float64
}

func NewKeywordClassifierService(model KeywordModel) *KeywordClassifierService {
	return &KeywordClassifierService{
		spam:    compileTerms(model.SpamTerms),
		benign:  compileTerms(model.BenignTerms),
		damping: clamp(model.BenignDamping, 0, 1),
	}
}

func (kc *KeywordClassifierService) Name() string {
	return "keyword"
}

// Score returns 0 for empty text: an unanswered prompt is not evidence of spam.
func (kc *KeywordClassifierService) Score(ctx context.Context, text string, metadata map[string]string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	haystack := normalizeText(representation(text, metadata))
	spam := noisyOr(haystack, kc.spam)
	benign := noisyOr(haystack, kc.benign)
	return clamp(spam*(1-benign*kc.damping), 0, 1), nil
}

// MatchedTerms lists the spam terms found in text, for explaining a score.
func (kc *KeywordClassifierService) MatchedTerms(text string) []string {
	haystack := normalizeText(text)
	var matched []string
	for _, term := range kc.spam {
		if containsTerm(haystack, term.Term) {
			matched = append(matched, term.Term)
		}
	}
	return matched
}

func noisyOr(haystack string, terms []WeightedTerm) float64 {
	miss := 1.0
	for _, term := range terms {
		if containsTerm(haystack, term.Term) {
			miss *= 1 - term.Weight
		}
	}
	return 1 - miss
}

func compileTerms(terms []WeightedTerm) []WeightedTerm {
	compiled := make([]WeightedTerm, 0, len(terms))
	for _, term := range terms {
		normalized := normalizeText(term.Term)
		if normalized == "" {
			continue
		}
		compiled = append(compiled, WeightedTerm{Term: normalized, Weight: clamp(term.Weight, 0, 1)})
	}
	return compiled
}

// representation appends metadata as "key: value" segments in key order.
func representation(text string, metadata map[string]string) string {
	if len(metadata) == 0 {
		return text
	}
	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := []string{text}
	for _, key := range keys {
		if value := strings.TrimSpace(metadata[key]); value != "" {
			parts = append(parts, key+": "+value)
		}
	}
	return strings.Join(parts, " | ")
}
