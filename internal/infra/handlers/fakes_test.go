package handlers

import (
	"context"
	"errors"
	"sync"
	"time"

	"call-sentinel/internal/domain/dto"
	"call-sentinel/internal/domain/entities"
	"call-sentinel/internal/domain/interfaces/repository"
	"call-sentinel/internal/infra/services"
)

type fakeInterrogation struct {
	mu        sync.Mutex
	action    entities.NextAction
	handoff   error
	teardown  error
	events    []dto.CallEvent
	teardowns []dto.CallEvent
}

func (f *fakeInterrogation) record(event dto.CallEvent) entities.NextAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.action
}

func (f *fakeInterrogation) Start(ctx context.Context, event dto.CallEvent) entities.NextAction {
	return f.record(event)
}

func (f *fakeInterrogation) HandleUtterance(ctx context.Context, event dto.CallEvent) entities.NextAction {
	return f.record(event)
}

func (f *fakeInterrogation) Handoff(ctx context.Context, sessionID string) (entities.NextAction, error) {
	return f.record(dto.CallEvent{CallSid: sessionID}), f.handoff
}

func (f *fakeInterrogation) Teardown(ctx context.Context, event dto.CallEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teardowns = append(f.teardowns, event)
	return f.teardown
}

type failingRenderer struct{}

func (failingRenderer) Render(entities.NextAction) ([]byte, error) {
	return nil, errors.New("template exploded")
}

func (failingRenderer) ContentType() string { return "text/xml" }

type fakeKnowledge struct {
	results  []entities.ScoredDocument
	err      error
	query    string
	category entities.Category
	topK     int
	added    []entities.KnowledgeDocument
}

func (f *fakeKnowledge) Add(ctx context.Context, title, text string, category entities.Category, metadata map[string]any) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.added = append(f.added, entities.KnowledgeDocument{Title: title, Content: text, Category: category, Metadata: metadata})
	return title, nil
}

func (f *fakeKnowledge) AddBestEffort(ctx context.Context, title, text string, category entities.Category, metadata map[string]any) string {
	id, _ := f.Add(ctx, title, text, category, metadata)
	return id
}

func (f *fakeKnowledge) Search(ctx context.Context, query string, category entities.Category, topK int) ([]entities.ScoredDocument, error) {
	f.query, f.category, f.topK = query, category, topK
	return f.results, f.err
}

func (f *fakeKnowledge) Purge(ctx context.Context, category entities.Category) (int64, error) {
	return 0, nil
}

type fakePurposes struct {
	records map[string]entities.CallerPurposeRecord
	err     error
}

func (f *fakePurposes) Find(ctx context.Context, number string) (entities.CallerPurposeRecord, error) {
	if f.err != nil {
		return entities.CallerPurposeRecord{}, f.err
	}
	record, ok := f.records[entities.NormalizeNumber(number)]
	if !ok {
		return entities.CallerPurposeRecord{}, repository.ErrNotFound
	}
	return record, nil
}

func (f *fakePurposes) Save(ctx context.Context, record entities.CallerPurposeRecord) error {
	return nil
}

func (f *fakePurposes) Expire(ctx context.Context, number string, ttl time.Duration) error {
	return nil
}

type fakeReputation struct {
	record *entities.ReputationRecord
	err    error
	last   entities.ReputationReport
}

func (f *fakeReputation) Lookup(ctx context.Context, number string) (*entities.ReputationRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.record == nil {
		return nil, repository.ErrNotFound
	}
	return f.record, nil
}

func (f *fakeReputation) Record(ctx context.Context, report entities.ReputationReport) (entities.ReputationRecord, error) {
	f.last = report
	if f.err != nil {
		return entities.ReputationRecord{}, f.err
	}
	if entities.NormalizeNumber(report.PhoneNumber) == "" {
		return entities.ReputationRecord{}, services.ErrInvalidNumber
	}
	return entities.ReputationRecord{
		PhoneNumber: report.PhoneNumber,
		IsSpam:      report.Spam(),
		Confidence:  report.Confidence,
		ReportCount: 3,
		Source:      report.Source,
	}, nil
}

func (f *fakeReputation) Count(ctx context.Context) (int, error) {
	return 0, nil
}

type fakeClassifier struct {
	score float64
	err   error
}

func (f fakeClassifier) Name() string { return "fake" }

func (f fakeClassifier) Score(ctx context.Context, text string, metadata map[string]string) (float64, error) {
	return f.score, f.err
}
