package provider

import (
	"encoding/xml"
	"strings"

	"call-sentinel/internal/domain/entities"
)

const defaultVoice = "Polly.Joanna"

// TwiMLRenderer renders next actions as TwiML voice responses.
type TwiMLRenderer struct {
	SpeechURL string
	Voice     string
}

func NewTwiMLRenderer(publicBaseURL string) *TwiMLRenderer {
	return &TwiMLRenderer{
		SpeechURL: strings.TrimRight(publicBaseURL, "/") + "/voice/speech",
		Voice:     defaultVoice,
	}
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

type sayVerb struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

type gatherVerb struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr"`
	Timeout       int      `xml:"timeout,attr"`
	Say           *sayVerb
}

type redirectVerb struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr"`
	URL     string   `xml:",chardata"`
}

type dialVerb struct {
	XMLName xml.Name `xml:"Dial"`
	Number  string   `xml:",chardata"`
}

type hangupVerb struct {
	XMLName xml.Name `xml:"Hangup"`
}

func (tr *TwiMLRenderer) ContentType() string {
	return "text/xml"
}

// Render never fails for a well-formed action; unknown kinds render as a hang-up.
func (tr *TwiMLRenderer) Render(action entities.NextAction) ([]byte, error) {
	response := twimlResponse{}
	say := func(text string) {
		if text != "" {
			response.Verbs = append(response.Verbs, sayVerb{Voice: tr.Voice, Text: text})
		}
	}

	switch action.Kind {
	case entities.ActionNone:
	case entities.ActionGather:
		gather := gatherVerb{
			Input:         "speech",
			Action:        tr.SpeechURL,
			Method:        "POST",
			SpeechTimeout: "5",
			Timeout:       15,
		}
		if action.Prompt != "" {
			gather.Say = &sayVerb{Voice: tr.Voice, Text: action.Prompt}
		}
		// No speech: the provider falls through to the redirect and posts an empty result.
		response.Verbs = append(response.Verbs, gather, redirectVerb{Method: "POST", URL: tr.SpeechURL})
	case entities.ActionForward:
		say(action.Prompt)
		if action.ForwardTo != "" {
			response.Verbs = append(response.Verbs, dialVerb{Number: action.ForwardTo})
		} else {
			response.Verbs = append(response.Verbs, hangupVerb{})
		}
	case entities.ActionHandoff:
		say(action.Prompt)
		if action.HandoffURL != "" {
			response.Verbs = append(response.Verbs, redirectVerb{Method: "POST", URL: action.HandoffURL})
		}
	default:
		say(action.Prompt)
		response.Verbs = append(response.Verbs, hangupVerb{})
	}

	body, err := xml.Marshal(response)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
