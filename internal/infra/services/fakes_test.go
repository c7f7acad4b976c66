package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"call-sentinel/internal/domain/dto"
	"call-sentinel/internal/domain/entities"
	"call-sentinel/internal/domain/interfaces/repository"
	"call-sentinel/internal/infra/logger"
	infrarepo "call-sentinel/internal/infra/repository"
	client "call-sentinel/internal/pkg"

	"github.com/stretchr/testify/require"
)

// noon is inside business hours, where the threshold shift is -0.05.
var noon = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type fakeReputation struct {
	mu      sync.Mutex
	records map[string]entities.ReputationRecord
	reports []entities.ReputationReport
	err     error
}

func newFakeReputation(records ...entities.ReputationRecord) *fakeReputation {
	f := &fakeReputation{records: map[string]entities.ReputationRecord{}}
	for _, record := range records {
		record.Normalized = entities.NormalizeNumber(record.PhoneNumber)
		f.records[record.Normalized] = record
	}
	return f
}

func (f *fakeReputation) Lookup(ctx context.Context, number string) (*entities.ReputationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	record, ok := f.records[entities.NormalizeNumber(number)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &record, nil
}

func (f *fakeReputation) Record(ctx context.Context, report entities.ReputationReport) (entities.ReputationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, report)
	normalized := entities.NormalizeNumber(report.PhoneNumber)
	record := f.records[normalized]
	record.PhoneNumber = report.PhoneNumber
	record.Normalized = normalized
	record.IsSpam = report.Spam()
	record.Confidence = max(record.Confidence, report.Confidence)
	record.ReportCount++
	record.Source = report.Source
	f.records[normalized] = record
	return record, nil
}

func (f *fakeReputation) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records), nil
}

func (f *fakeReputation) Reports() []entities.ReputationReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entities.ReputationReport(nil), f.reports...)
}

// countingClassifier returns a fixed score and counts invocations.
type countingClassifier struct {
	score float64
	err   error
	calls atomic.Int32
}

func (c *countingClassifier) Name() string { return "counting" }

func (c *countingClassifier) Score(ctx context.Context, text string, metadata map[string]string) (float64, error) {
	c.calls.Add(1)
	return c.score, c.err
}

// blockingClassifier never answers before its context ends.
type blockingClassifier struct{}

func (blockingClassifier) Name() string { return "blocking" }

func (blockingClassifier) Score(ctx context.Context, text string, metadata map[string]string) (float64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

type fakeVoiceAgent struct {
	err   error
	calls atomic.Int32
	last  dto.HandoffRequest
}

func (f *fakeVoiceAgent) Handoff(ctx context.Context, request dto.HandoffRequest) (dto.HandoffResponse, error) {
	f.calls.Add(1)
	f.last = request
	if f.err != nil {
		return dto.HandoffResponse{}, f.err
	}
	return dto.HandoffResponse{ID: "agent-call-1", Status: "queued"}, nil
}

// failingRepository fails every write.
type failingRepository struct {
	infrarepo.MemoryRepository[entities.KnowledgeDocument]
	creates atomic.Int32
}

func (f *failingRepository) Create(ctx context.Context, collectionName string, entity entities.KnowledgeDocument) (entities.KnowledgeDocument, error) {
	f.creates.Add(1)
	return entity, errors.New("store unavailable")
}

func deterministicModulator() *ConfidenceModulator {
	cfg := DefaultModulatorConfig()
	cfg.Deterministic = true
	modulator := NewConfidenceModulator(cfg, nil)
	modulator.Now = fixedClock(noon)
	return modulator
}

func keywordClassifier(t *testing.T) *KeywordClassifierService {
	t.Helper()
	model, err := LoadKeywordModel("")
	require.NoError(t, err)
	return NewKeywordClassifierService(model)
}

func keywordOverrides(t *testing.T) KeywordOverrides {
	t.Helper()
	overrides, err := LoadKeywordOverrides("")
	require.NoError(t, err)
	return overrides
}

func newBadgerStore(t *testing.T) repository.KeyValue {
	t.Helper()
	db, err := client.BadgerClient(client.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return infrarepo.NewBadgerKeyValue(db)
}

// interrogationFixture wires the state machine over real local components.
type interrogationFixture struct {
	service    *InterrogationService
	reputation *fakeReputation
	knowledge  *KnowledgeService
	sessions   *SessionService
	purposes   *CallerPurposeService
	agent      *fakeVoiceAgent
}

func newInterrogationFixture(t *testing.T, records ...entities.ReputationRecord) *interrogationFixture {
	t.Helper()
	log := logger.NewNopLogger()
	reputation := newFakeReputation(records...)

	engine := NewDecisionEngine(reputation, keywordClassifier(t), deterministicModulator(), keywordOverrides(t), log)

	knowledge := NewKnowledgeService(infrarepo.NewMemoryRepository[entities.KnowledgeDocument](), NewTermFrequencyEmbedder(512), log)
	knowledge.Now = fixedClock(noon)

	store := newBadgerStore(t)
	sessions := NewSessionService(store, time.Hour)
	purposes := NewCallerPurposeService(store, 24*time.Hour)
	agent := &fakeVoiceAgent{}

	cfg := DefaultInterrogationConfig()
	cfg.ForwardNumber = "+15550000000"
	cfg.AssistantID = "assistant-1"
	cfg.HandoffURL = "https://agent.example.com/handoff"

	service := NewInterrogationService(engine, sessions, purposes, knowledge, reputation, agent, log, cfg)
	service.Now = fixedClock(noon)

	return &interrogationFixture{
		service:    service,
		reputation: reputation,
		knowledge:  knowledge,
		sessions:   sessions,
		purposes:   purposes,
		agent:      agent,
	}
}

func incoming(sid, from string) dto.CallEvent {
	return dto.CallEvent{CallSid: sid, From: from, To: "+15559990000", Direction: "inbound", CallStatus: "ringing"}
}

func speech(sid, from, text string, confidence float64) dto.CallEvent {
	event := incoming(sid, from)
	event.CallStatus = "in-progress"
	event.SpeechResult = text
	event.Confidence = confidence
	return event
}
