package Iservices

import "context"

// IClassifierService scores text for spam likelihood in [0,1].
type IClassifierService interface {
	Score(ctx context.Context, text string, metadata map[string]string) (float64, error)
	Name() string
}
