package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"call-sentinel/internal/domain/dto"
	"call-sentinel/internal/domain/entities"
	"call-sentinel/internal/domain/interfaces/repository"
	Iservices "call-sentinel/internal/domain/interfaces/services"
	"call-sentinel/internal/infra/logger"
	"call-sentinel/internal/infra/metrics"
	"call-sentinel/internal/infra/provider"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// InterrogationConfig holds the state machine's cutoffs and hand-off wiring.
type InterrogationConfig struct {
	RejectCutoff             float64
	MaxTurns                 int
	MinInformativeWords      int
	MinRecognitionConfidence float64
	ReportToReputation       bool
	ForwardNumber            string
	PurposeGrace             time.Duration
	Timeout                  time.Duration

	HandoffEnabled bool
	AssistantID    string
	HandoffURL     string
}

func DefaultInterrogationConfig() InterrogationConfig {
	return InterrogationConfig{
		RejectCutoff:             0.75,
		MaxTurns:                 5,
		MinInformativeWords:      3,
		MinRecognitionConfidence: 0.5,
		ReportToReputation:       true,
		PurposeGrace:             30 * time.Minute,
		Timeout:                  5 * time.Second,
	}
}

// Prompts are the lines spoken to the caller.
type Prompts struct {
	Greeting   string
	Reprompt   string
	Clarify    string
	FollowUp   string
	WrapUp     string
	Goodbye    string
	Rejected   string
	Forwarding string
	Handoff    string
	HangUp     string
}

func DefaultPrompts() Prompts {
	return Prompts{
		Greeting:   "Hello, you have reached an automated call screening service. Please state your name and the reason for your call.",
		Reprompt:   "Sorry, I didn't hear anything. Could you tell me why you are calling?",
		Clarify:    "Sorry, I didn't catch that. Could you tell me who you are and why you are calling?",
		FollowUp:   "Thank you. Could you tell me a little more about what this is regarding?",
		WrapUp:     "Thank you for your time. We are unable to connect your call. Goodbye.",
		Goodbye:    "We did not hear a response. Goodbye.",
		Rejected:   "This call cannot be completed. Goodbye.",
		Forwarding: "Thank you. Please hold while we connect you.",
		Handoff:    "Please hold.",
		HangUp:     "We are sorry, something went wrong on our end. Please try your call again later. Goodbye.",
	}
}

// InterrogationService drives a suspicious call through a bounded conversation
// until it is forwarded, rejected or handed off. It keeps no per-call state in memory.
type InterrogationService struct {
	Engine     Iservices.IDecisionEngine
	Sessions   Iservices.ISessionService
	Purposes   Iservices.ICallerPurposeService
	Knowledge  Iservices.IKnowledgeService
	Reputation Iservices.IReputationService
	VoiceAgent provider.IVoiceAgentProvider
	Logger     *logger.Logger
	Config     InterrogationConfig
	Prompts    Prompts
	Now        func() time.Time
}

func NewInterrogationService(
	engine Iservices.IDecisionEngine,
	sessions Iservices.ISessionService,
	purposes Iservices.ICallerPurposeService,
	knowledge Iservices.IKnowledgeService,
	reputation Iservices.IReputationService,
	voiceAgent provider.IVoiceAgentProvider,
	logger *logger.Logger,
	config InterrogationConfig,
) *InterrogationService {
	return &InterrogationService{
		Engine:     engine,
		Sessions:   sessions,
		Purposes:   purposes,
		Knowledge:  knowledge,
		Reputation: reputation,
		VoiceAgent: voiceAgent,
		Logger:     logger,
		Config:     config,
		Prompts:    DefaultPrompts(),
		Now:        time.Now,
	}
}

// Start triages a new call from its number and metadata.
func (is *InterrogationService) Start(ctx context.Context, event dto.CallEvent) entities.NextAction {
	if event.CallSid == "" {
		is.Logger.Error("Incoming call without a session id", logrus.Fields{"caller": event.From})
		return is.politeHangup()
	}

	now := is.Now().UTC()
	call := entities.CallContext{
		SessionID:        event.CallSid,
		CallerNumber:     event.From,
		NormalizedCaller: entities.NormalizeNumber(event.From),
		CalleeNumber:     event.To,
		Direction:        event.Direction,
		Metadata:         event.Metadata(),
		StartedAt:        now,
	}
	is.transition(&call, entities.StateGreeting)

	decision := is.Engine.Triage(ctx, &call)
	call.ReputationFloor = decision.ReputationConfidence
	call.RaiseConfidence(decision.Combined)

	is.Logger.Info(fmt.Sprintf("Call triaged as %s", decision.Route), logrus.Fields{
		"session_id":      call.SessionID,
		"caller":          call.CallerNumber,
		"combined":        decision.Combined,
		"short_circuited": decision.ShortCircuited,
	})

	switch decision.Route {
	case entities.RouteReject:
		// Known robocaller: the store already knows, nothing new to report.
		return is.reject(ctx, &call, is.Prompts.Rejected, false)
	case entities.RouteForward:
		return is.forward(ctx, &call)
	}

	is.transition(&call, entities.StateAwaitingPurpose)
	is.savePurpose(ctx, &call)
	is.saveSession(ctx, &call)
	return is.gather(&call, is.Prompts.Greeting)
}

// HandleUtterance advances the conversation by one caller turn.
func (is *InterrogationService) HandleUtterance(ctx context.Context, event dto.CallEvent) entities.NextAction {
	call, err := is.rehydrate(ctx, event)
	if err != nil {
		is.Logger.Error(fmt.Sprintf("Cannot restore call state: %v", err), logrus.Fields{
			"session_id": event.CallSid,
			"caller":     event.From,
		})
		return is.politeHangup()
	}
	if call.State.Terminal() {
		return entities.NextAction{Kind: entities.ActionNone, State: call.State}
	}

	utterance := event.Utterance()
	now := is.Now().UTC()

	if utterance.Empty() {
		call.ConsecutiveEmpty++
		call.AppendTurn(entities.Turn{Timestamp: now, Combined: call.SpamConfidence})
		if call.ConsecutiveEmpty >= 2 {
			return is.reject(ctx, &call, is.Prompts.Goodbye, true)
		}
		if is.exhausted(&call) {
			return is.reject(ctx, &call, is.Prompts.WrapUp, true)
		}
		is.savePurpose(ctx, &call)
		is.saveSession(ctx, &call)
		return is.gather(&call, is.Prompts.Reprompt)
	}
	call.ConsecutiveEmpty = 0

	// A mis-recognized turn is not evidence either way.
	if utterance.RecognitionConfidence < is.Config.MinRecognitionConfidence {
		call.AppendTurn(entities.Turn{
			Text:                  utterance.Text,
			RecognitionConfidence: utterance.RecognitionConfidence,
			Timestamp:             now,
			Combined:              call.SpamConfidence,
		})
		if is.exhausted(&call) {
			return is.reject(ctx, &call, is.Prompts.WrapUp, true)
		}
		is.transition(&call, entities.StateGathering)
		is.savePurpose(ctx, &call)
		is.saveSession(ctx, &call)
		return is.gather(&call, is.Prompts.Clarify)
	}

	decision := is.Engine.Classify(ctx, &call, utterance)
	call.AppendTurn(entities.Turn{
		Text:                  utterance.Text,
		RecognitionConfidence: utterance.RecognitionConfidence,
		Timestamp:             now,
		Result:                decision.Classification,
		Combined:              decision.Combined,
	})
	call.RaiseConfidence(decision.Combined)
	is.savePurpose(ctx, &call)

	lowInformation := informativeWords(utterance.Text) < is.Config.MinInformativeWords
	suspicious := decision.Route != entities.RouteForward || call.SpamConfidence >= EscalationThreshold

	is.Logger.Debug("Scored caller turn", logrus.Fields{
		"session_id":      call.SessionID,
		"turn":            len(call.Turns),
		"combined":        call.SpamConfidence,
		"low_information": lowInformation,
		"override_term":   decision.OverrideTerm,
	})

	switch {
	case call.SpamConfidence > is.Config.RejectCutoff:
		return is.escalate(ctx, &call)
	case !lowInformation && !suspicious:
		return is.forward(ctx, &call)
	case is.exhausted(&call):
		return is.reject(ctx, &call, is.Prompts.WrapUp, true)
	case lowInformation:
		is.transition(&call, entities.StateGathering)
		is.saveSession(ctx, &call)
		return is.gather(&call, is.Prompts.Clarify)
	default:
		is.transition(&call, entities.StateGathering)
		is.saveSession(ctx, &call)
		return is.gather(&call, is.Prompts.FollowUp)
	}
}

// Handoff moves a live call to the voice agent. Repeated calls for a handed-off
// session return the same action without contacting the platform again.
func (is *InterrogationService) Handoff(ctx context.Context, sessionID string) (entities.NextAction, error) {
	if sessionID == "" {
		return is.politeHangup(), ErrMissingSession
	}
	call, err := is.Sessions.Load(ctx, sessionID)
	if err != nil {
		return is.politeHangup(), fmt.Errorf("%w: %s: %v", ErrMissingSession, sessionID, err)
	}

	switch {
	case call.State == entities.StateHandedOff:
		return is.handoffAction(&call), nil
	case call.State.Terminal():
		return entities.NextAction{Kind: entities.ActionNone, State: call.State}, nil
	}

	action, err := is.handoff(ctx, &call)
	if err != nil {
		return is.reject(ctx, &call, is.Prompts.Rejected, true), err
	}
	return action, nil
}

// Teardown archives a finished call and releases its state. The archive write,
// the purpose TTL cut and the session delete run concurrently.
func (is *InterrogationService) Teardown(ctx context.Context, event dto.CallEvent) error {
	if event.CallSid == "" {
		return ErrMissingSession
	}

	call, err := is.Sessions.Load(ctx, event.CallSid)
	archived := err == nil
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		is.Logger.Warn(fmt.Sprintf("Failed to load session for teardown: %v", err), logrus.Fields{
			"session_id": event.CallSid,
			"dependency": "session",
		})
	}
	number := call.CallerNumber
	if number == "" {
		number = event.From
	}

	g := new(errgroup.Group)
	g.Go(func() error {
		if !archived {
			return nil
		}
		is.Knowledge.AddBestEffort(ctx, documentTitle(entities.CategoryCallRecord, number),
			callSummary(&call, event.CallStatus), entities.CategoryCallRecord, callMetadata(&call))
		return nil
	})
	g.Go(func() error {
		if entities.NormalizeNumber(number) == "" {
			return nil
		}
		err := is.Purposes.Expire(ctx, number, is.Config.PurposeGrace)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("expire caller purpose: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := is.Sessions.Delete(ctx, event.CallSid)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (is *InterrogationService) rehydrate(ctx context.Context, event dto.CallEvent) (entities.CallContext, error) {
	if event.CallSid == "" {
		return entities.CallContext{}, ErrMissingSession
	}
	call, err := is.Sessions.Load(ctx, event.CallSid)
	if err == nil {
		return call, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		is.Logger.Warn(fmt.Sprintf("Session load failed, rebuilding from caller purpose: %v", err), logrus.Fields{
			"session_id": event.CallSid,
			"dependency": "session",
		})
	}

	record, perr := is.Purposes.Find(ctx, event.From)
	if perr != nil || record.SessionID != event.CallSid {
		return entities.CallContext{}, fmt.Errorf("%w: %s", ErrMissingSession, event.CallSid)
	}

	now := is.Now().UTC()
	call = entities.CallContext{
		SessionID:        event.CallSid,
		CallerNumber:     event.From,
		NormalizedCaller: entities.NormalizeNumber(event.From),
		CalleeNumber:     event.To,
		Direction:        event.Direction,
		Metadata:         event.Metadata(),
		Turns:            record.Turns,
		SpamConfidence:   record.SpamConfidence,
		ReputationFloor:  record.ReputationFloor,
		ConsecutiveEmpty: record.ConsecutiveEmpty,
		StartedAt:        now,
	}
	state := entities.StateAwaitingPurpose
	if len(call.Turns) > 0 {
		state = entities.StateGathering
		call.StartedAt = call.Turns[0].Timestamp
	}
	call.Transition(state, now)
	return call, nil
}

// escalate hands a confirmed spammer to the voice agent when enabled, and rejects otherwise.
func (is *InterrogationService) escalate(ctx context.Context, call *entities.CallContext) entities.NextAction {
	if !is.Config.HandoffEnabled || is.VoiceAgent == nil {
		return is.reject(ctx, call, is.Prompts.Rejected, true)
	}
	action, err := is.handoff(ctx, call)
	if err != nil {
		return is.reject(ctx, call, is.Prompts.Rejected, true)
	}
	// The agent owns the call from here; the finding still has to be on file.
	is.fileSuspectReport(ctx, call)
	return action
}

func (is *InterrogationService) handoff(ctx context.Context, call *entities.CallContext) (entities.NextAction, error) {
	if call.State == entities.StateHandedOff {
		return is.handoffAction(call), nil
	}
	if is.VoiceAgent == nil {
		return entities.NextAction{}, fmt.Errorf("%w: no voice agent configured", ErrHandoffFailed)
	}

	request := dto.HandoffRequest{
		CallID:      call.SessionID,
		AssistantID: is.Config.AssistantID,
		Customer:    dto.HandoffCaller{Number: call.CallerNumber},
		Metadata: map[string]any{
			"spam_confidence": call.SpamConfidence,
			"purpose":         callPurpose(call),
		},
	}
	_, err := runBounded(ctx, is.Config.Timeout, func(ctx context.Context) (dto.HandoffResponse, error) {
		return is.VoiceAgent.Handoff(ctx, request)
	})
	if err != nil {
		metrics.Degradations.WithLabelValues("voice_agent").Inc()
		is.Logger.Error(fmt.Sprintf("Hand-off failed, rejecting instead: %v", err), logrus.Fields{
			"session_id": call.SessionID,
			"caller":     call.CallerNumber,
			"dependency": "voice_agent",
		})
		return entities.NextAction{}, fmt.Errorf("%w: %v", ErrHandoffFailed, err)
	}

	is.transition(call, entities.StateHandedOff)
	is.savePurpose(ctx, call)
	is.saveSession(ctx, call)
	return is.handoffAction(call), nil
}

// reject ends the call. The suspect report is always written; the reputation store
// only hears about calls whose final confidence reached the reject cutoff.
func (is *InterrogationService) reject(ctx context.Context, call *entities.CallContext, prompt string, report bool) entities.NextAction {
	is.transition(call, entities.StateEscalatedReject)
	is.fileSuspectReport(ctx, call)

	if report && is.Config.ReportToReputation && call.SpamConfidence >= is.Config.RejectCutoff && call.NormalizedCaller != "" {
		spam := true
		_, err := runBounded(ctx, is.Config.Timeout, func(ctx context.Context) (entities.ReputationRecord, error) {
			return is.Reputation.Record(ctx, entities.ReputationReport{
				PhoneNumber: call.CallerNumber,
				Confidence:  call.SpamConfidence,
				Source:      entities.SourceInterrogation,
				IsSpam:      &spam,
			})
		})
		if err != nil {
			is.Logger.Warn(fmt.Sprintf("Failed to report caller to reputation store: %v", err), logrus.Fields{
				"session_id": call.SessionID,
				"caller":     call.CallerNumber,
				"dependency": "reputation",
			})
		}
	}

	is.saveSession(ctx, call)
	return entities.NextAction{Kind: entities.ActionHangup, Prompt: prompt, State: call.State}
}

func (is *InterrogationService) fileSuspectReport(ctx context.Context, call *entities.CallContext) {
	is.Knowledge.AddBestEffort(ctx, documentTitle(entities.CategorySuspectReport, call.CallerNumber),
		callSummary(call, ""), entities.CategorySuspectReport, callMetadata(call))
}

func (is *InterrogationService) forward(ctx context.Context, call *entities.CallContext) entities.NextAction {
	is.transition(call, entities.StateLegitimateForward)
	is.saveSession(ctx, call)
	return entities.NextAction{
		Kind:      entities.ActionForward,
		Prompt:    is.Prompts.Forwarding,
		ForwardTo: is.Config.ForwardNumber,
		State:     call.State,
	}
}

func (is *InterrogationService) gather(call *entities.CallContext, prompt string) entities.NextAction {
	return entities.NextAction{Kind: entities.ActionGather, Prompt: prompt, State: call.State}
}

func (is *InterrogationService) handoffAction(call *entities.CallContext) entities.NextAction {
	return entities.NextAction{
		Kind:       entities.ActionHandoff,
		Prompt:     is.Prompts.Handoff,
		HandoffURL: is.Config.HandoffURL,
		State:      call.State,
	}
}

func (is *InterrogationService) politeHangup() entities.NextAction {
	return entities.NextAction{Kind: entities.ActionHangup, Prompt: is.Prompts.HangUp}
}

// exhausted reports whether the call has used up its turn budget.
func (is *InterrogationService) exhausted(call *entities.CallContext) bool {
	return is.Config.MaxTurns > 0 && len(call.Turns) >= is.Config.MaxTurns
}

func (is *InterrogationService) transition(call *entities.CallContext, state entities.CallState) {
	call.Transition(state, is.Now().UTC())
	metrics.Transitions.WithLabelValues(string(state)).Inc()
}

func (is *InterrogationService) saveSession(ctx context.Context, call *entities.CallContext) {
	if err := is.Sessions.Save(ctx, *call); err != nil {
		is.Logger.Error(fmt.Sprintf("Failed to save session: %v", err), logrus.Fields{
			"session_id": call.SessionID,
			"caller":     call.CallerNumber,
			"dependency": "session",
		})
	}
}

func (is *InterrogationService) savePurpose(ctx context.Context, call *entities.CallContext) {
	if call.NormalizedCaller == "" {
		return
	}
	record := entities.CallerPurposeRecord{
		PhoneNumber:      call.CallerNumber,
		SessionID:        call.SessionID,
		Purpose:          callPurpose(call),
		SpamConfidence:   call.SpamConfidence,
		ReputationFloor:  call.ReputationFloor,
		ConsecutiveEmpty: call.ConsecutiveEmpty,
		Turns:            call.Turns,
		UpdatedAt:        is.Now().UTC(),
	}
	if last := call.LastTurns(1); len(last) == 1 {
		record.RecognitionConfidence = last[0].RecognitionConfidence
	}
	if err := is.Purposes.Save(ctx, record); err != nil {
		is.Logger.Warn(fmt.Sprintf("Failed to save caller purpose: %v", err), logrus.Fields{
			"session_id": call.SessionID,
			"caller":     call.CallerNumber,
			"dependency": "caller_purpose",
		})
	}
}

// callPurpose joins what the caller actually said, oldest first.
func callPurpose(call *entities.CallContext) string {
	parts := make([]string, 0, len(call.Turns))
	for _, turn := range call.Turns {
		if text := strings.TrimSpace(turn.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func documentTitle(category entities.Category, number string) string {
	normalized := entities.NormalizeNumber(number)
	if normalized == "" {
		normalized = "unknown"
	}
	return fmt.Sprintf("%s:%s", category, normalized)
}

// callSummary is the searchable text of a report or archive document.
func callSummary(call *entities.CallContext, status string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Caller %s\n", call.NormalizedCaller)
	fmt.Fprintf(&b, "State %s disposition %s\n", call.State, call.Disposition)
	fmt.Fprintf(&b, "Spam confidence %.2f\n", call.SpamConfidence)
	if status != "" {
		fmt.Fprintf(&b, "Call status %s\n", status)
	}
	for i, turn := range call.Turns {
		text := strings.TrimSpace(turn.Text)
		if text == "" {
			text = "(no response)"
		}
		fmt.Fprintf(&b, "Turn %d: %s\n", i+1, text)
	}
	return strings.TrimRight(b.String(), "\n")
}

func callMetadata(call *entities.CallContext) map[string]any {
	return map[string]any{
		"session_id":      call.SessionID,
		"phone_number":    call.NormalizedCaller,
		"spam_confidence": call.SpamConfidence,
		"state":           string(call.State),
		"disposition":     string(call.Disposition),
		"turns":           len(call.Turns),
	}
}
