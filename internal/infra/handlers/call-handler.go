package handlers

import (
	"fmt"
	"net/http"

	"call-sentinel/internal/domain/dto"
	"call-sentinel/internal/domain/entities"
	Iservices "call-sentinel/internal/domain/interfaces/services"
	"call-sentinel/internal/infra/logger"
	"call-sentinel/internal/infra/provider"

	"github.com/sirupsen/logrus"
)

// fallbackTwiML is served when rendering itself fails, so the provider always gets valid markup.
const fallbackTwiML = `<?xml version="1.0" encoding="UTF-8"?>` + "\n" + `<Response><Hangup></Hangup></Response>`

type CallHandlers struct {
	Logger        *logger.Logger
	Interrogation Iservices.IInterrogationService
	Renderer      provider.IVoiceResponseRenderer
}

func NewCallHandlers(logger *logger.Logger, interrogation Iservices.IInterrogationService, renderer provider.IVoiceResponseRenderer) *CallHandlers {
	return &CallHandlers{Logger: logger, Interrogation: interrogation, Renderer: renderer}
}

// Incoming answers a new call from the telephony provider.
//
// The provider posts the call as a form (CallSid, From, To, Direction, caller location
// and carrier fields). The call is triaged and the next action is returned as TwiML.
//
// HTTP Status Codes:
//   - 200 OK: always; failures are answered with a polite hang-up instead of an error status.
func (th *CallHandlers) Incoming(w http.ResponseWriter, r *http.Request) {
	event := th.parseEvent(r)
	th.render(w, event, th.Interrogation.Start(r.Context(), event))
}

// Speech handles a gather callback carrying the caller's recognized speech.
func (th *CallHandlers) Speech(w http.ResponseWriter, r *http.Request) {
	event := th.parseEvent(r)
	th.render(w, event, th.Interrogation.HandleUtterance(r.Context(), event))
}

// Status receives call progress callbacks and tears the session down once the call ends.
func (th *CallHandlers) Status(w http.ResponseWriter, r *http.Request) {
	event := th.parseEvent(r)
	if event.Finished() {
		if err := th.Interrogation.Teardown(r.Context(), event); err != nil {
			th.Logger.Error(fmt.Sprintf("Teardown failed: %v", err), logrus.Fields{
				"session_id": event.CallSid,
				"caller":     event.From,
			})
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// Handoff transfers a live call to the voice agent. Safe to call more than once.
func (th *CallHandlers) Handoff(w http.ResponseWriter, r *http.Request) {
	event := th.parseEvent(r)
	action, err := th.Interrogation.Handoff(r.Context(), event.CallSid)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Hand-off request failed: %v", err), logrus.Fields{
			"session_id": event.CallSid,
			"caller":     event.From,
		})
	}
	th.render(w, event, action)
}

func (th *CallHandlers) parseEvent(r *http.Request) dto.CallEvent {
	if err := r.ParseForm(); err != nil {
		th.Logger.Warn(fmt.Sprintf("Failed to parse callback form: %v", err))
	}
	return dto.CallEventFromForm(r.PostForm)
}

func (th *CallHandlers) render(w http.ResponseWriter, event dto.CallEvent, action entities.NextAction) {
	body, err := th.Renderer.Render(action)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to render voice response: %v", err), logrus.Fields{"session_id": event.CallSid})
		body = []byte(fallbackTwiML)
	}
	w.Header().Set("Content-Type", th.Renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
