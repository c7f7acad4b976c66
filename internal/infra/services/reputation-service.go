package services

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"call-sentinel/internal/domain/entities"
	"call-sentinel/internal/domain/interfaces/repository"
	"call-sentinel/internal/infra/logger"
	"call-sentinel/internal/infra/metrics"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed data/reputation_seed.yaml
var defaultReputationSeed []byte

// ReputationService is the number-keyed denylist in front of the reputation repository.
type ReputationService struct {
	Repository repository.ReputationRepository
	Logger     *logger.Logger
	Now        func() time.Time
}

func NewReputationService(repo repository.ReputationRepository, logger *logger.Logger) *ReputationService {
	return &ReputationService{Repository: repo, Logger: logger, Now: time.Now}
}

// Lookup matches on the digits-only form of number. Unknown numbers return
// repository.ErrNotFound. Storage failures are logged and also reported as not found,
// so a broken store never blocks call setup.
func (rs *ReputationService) Lookup(ctx context.Context, number string) (*entities.ReputationRecord, error) {
	normalized := entities.NormalizeNumber(number)
	if normalized == "" {
		return nil, repository.ErrNotFound
	}

	record, err := rs.Repository.Find(ctx, normalized)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			metrics.Degradations.WithLabelValues("reputation").Inc()
			rs.Logger.Warn(fmt.Sprintf("Reputation lookup failed, treating as not found: %v", err), logrus.Fields{
				"caller":     number,
				"dependency": "reputation",
			})
		}
		return nil, repository.ErrNotFound
	}
	return &record, nil
}

// Record adds one report about a number. Report counts always increase; the
// confidence is raised, never lowered, unless the source is manual_override.
func (rs *ReputationService) Record(ctx context.Context, report entities.ReputationReport) (entities.ReputationRecord, error) {
	normalized := entities.NormalizeNumber(report.PhoneNumber)
	if normalized == "" {
		return entities.ReputationRecord{}, ErrInvalidNumber
	}
	source := report.Source
	if source == "" {
		source = entities.SourceManual
	}

	record := entities.ReputationRecord{
		PhoneNumber: report.PhoneNumber,
		Normalized:  normalized,
		IsSpam:      report.Spam(),
		Confidence:  clamp(report.Confidence, 0, 1),
		LastSeen:    rs.Now().UTC(),
		Source:      source,
	}

	saved, err := rs.Repository.Upsert(ctx, record, source == entities.SourceManualOverride)
	if err != nil {
		rs.Logger.Error(fmt.Sprintf("Failed to record reputation for %s: %v", report.PhoneNumber, err))
		return entities.ReputationRecord{}, err
	}
	return saved, nil
}

func (rs *ReputationService) Count(ctx context.Context) (int, error) {
	return rs.Repository.Count(ctx)
}

// Seed loads known spam numbers without touching numbers already present.
func (rs *ReputationService) Seed(ctx context.Context, reports []entities.ReputationReport) (int, error) {
	now := rs.Now().UTC()
	records := make([]entities.ReputationRecord, 0, len(reports))
	for _, report := range reports {
		normalized := entities.NormalizeNumber(report.PhoneNumber)
		if normalized == "" {
			continue
		}
		records = append(records, entities.ReputationRecord{
			PhoneNumber: report.PhoneNumber,
			Normalized:  normalized,
			IsSpam:      report.Spam(),
			Confidence:  clamp(report.Confidence, 0, 1),
			ReportCount: report.ReportCount,
			LastSeen:    now,
			Source:      report.Source,
		})
	}
	return rs.Repository.Seed(ctx, records)
}

type reputationSeedFile struct {
	Numbers []entities.ReputationReport `yaml:"numbers"`
}

// LoadReputationSeed reads a seed file, or the built-in list when path is empty.
func LoadReputationSeed(path string) ([]entities.ReputationReport, error) {
	raw := defaultReputationSeed
	if path != "" {
		var err error
		if raw, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read reputation seed: %w", err)
		}
	}
	var file reputationSeedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse reputation seed: %w", err)
	}
	return file.Numbers, nil
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
