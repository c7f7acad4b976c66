package Iservices

import (
	"call-sentinel/internal/domain/entities"
	"context"
)

// IReputationService is the number-keyed denylist.
type IReputationService interface {
	Lookup(ctx context.Context, number string) (*entities.ReputationRecord, error)
	Record(ctx context.Context, report entities.ReputationReport) (entities.ReputationRecord, error)
	Count(ctx context.Context) (int, error)
}
