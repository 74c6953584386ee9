package search

import (
	"context"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/query"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/result"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/usecase/geonorm"
)

// Repository executes restaurant queries and returns every match.
type Repository interface {
	Find(ctx context.Context, q query.Query) ([]result.Row, error)
}

// Normalizer resolves location criteria into a search origin.
type Normalizer interface {
	Normalize(ctx context.Context, in geonorm.Input) geo.NormalizedLocation
}
