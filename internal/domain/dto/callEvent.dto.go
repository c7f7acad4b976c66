package dto

import (
	"call-sentinel/internal/domain/entities"
	"net/url"
	"strconv"
	"strings"
)

// CallEvent is one telephony callback, decoded from the provider's form post.
type CallEvent struct {
	CallSid      string
	From         string
	To           string
	Direction    string
	CallStatus   string
	FromCity     string
	FromState    string
	FromCountry  string
	CallerName   string
	SpeechResult string
	Confidence   float64
}

// CallEventFromForm reads the provider's form fields. Missing fields stay empty.
func CallEventFromForm(form url.Values) CallEvent {
	event := CallEvent{
		CallSid:      strings.TrimSpace(form.Get("CallSid")),
		From:         strings.TrimSpace(form.Get("From")),
		To:           strings.TrimSpace(form.Get("To")),
		Direction:    form.Get("Direction"),
		CallStatus:   form.Get("CallStatus"),
		FromCity:     form.Get("FromCity"),
		FromState:    form.Get("FromState"),
		FromCountry:  form.Get("FromCountry"),
		CallerName:   form.Get("CallerName"),
		SpeechResult: form.Get("SpeechResult"),
	}
	// Providers omit Confidence for typed or replayed input; treat that as fully recognized.
	event.Confidence = 1
	if raw := form.Get("Confidence"); raw != "" {
		if confidence, err := strconv.ParseFloat(raw, 64); err == nil {
			event.Confidence = confidence
		}
	}
	return event
}

// Metadata returns the call metadata the classifier may fold into its input.
func (e CallEvent) Metadata() map[string]string {
	metadata := map[string]string{}
	if e.Direction != "" {
		metadata["Direction"] = e.Direction
	}
	if location := strings.TrimSpace(strings.Join([]string{e.FromCity, e.FromState, e.FromCountry}, " ")); location != "" {
		metadata["Location"] = strings.Join(strings.Fields(location), " ")
	}
	if e.CallerName != "" {
		metadata["CallerName"] = e.CallerName
	}
	return metadata
}

// Utterance returns the recognized speech of a gather callback.
func (e CallEvent) Utterance() *entities.Utterance {
	return &entities.Utterance{Text: e.SpeechResult, RecognitionConfidence: e.Confidence}
}

// Finished reports whether the status callback marks the end of the call.
func (e CallEvent) Finished() bool {
	switch strings.ToLower(e.CallStatus) {
	case "completed", "busy", "failed", "no-answer", "canceled":
		return true
	}
	return false
}
