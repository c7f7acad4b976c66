package services

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/keyword_overrides.yaml
var defaultKeywordOverrides []byte

type KeywordOverrideRule struct {
	Term       string  `yaml:"term"`
	Confidence float64 `yaml:"confidence,omitempty"`
}

// KeywordOverrides force the combined confidence up when an utterance names a
// solicitation the classifier under-detects.
type KeywordOverrides struct {
	ForcedConfidence float64               `yaml:"forced_confidence"`
	Rules            []KeywordOverrideRule `yaml:"rules"`
}

func LoadKeywordOverrides(path string) (KeywordOverrides, error) {
	raw := defaultKeywordOverrides
	if path != "" {
		var err error
		if raw, err = os.ReadFile(path); err != nil {
			return KeywordOverrides{}, fmt.Errorf("read keyword overrides: %w", err)
		}
	}
	var overrides KeywordOverrides
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return KeywordOverrides{}, fmt.Errorf("parse keyword overrides: %w", err)
	}
	return overrides.compile(), nil
}

func (ko KeywordOverrides) compile() KeywordOverrides {
	compiled := KeywordOverrides{ForcedConfidence: clamp(ko.ForcedConfidence, 0, 1)}
	for _, rule := range ko.Rules {
		term := normalizeText(rule.Term)
		if term == "" {
			continue
		}
		confidence := rule.Confidence
		if confidence <= 0 {
			confidence = compiled.ForcedConfidence
		}
		compiled.Rules = append(compiled.Rules, KeywordOverrideRule{Term: term, Confidence: clamp(confidence, 0, 1)})
	}
	return compiled
}

// Match returns the matching rule with the highest forced confidence.
func (ko KeywordOverrides) Match(text string) (KeywordOverrideRule, bool) {
	haystack := normalizeText(text)
	if haystack == "" {
		return KeywordOverrideRule{}, false
	}
	var best KeywordOverrideRule
	found := false
	for _, rule := range ko.Rules {
		if containsTerm(haystack, rule.Term) && (!found || rule.Confidence > best.Confidence) {
			best = rule
			found = true
		}
	}
	return best, found
}
