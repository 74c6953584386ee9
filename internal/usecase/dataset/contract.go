package dataset

import (
	"context"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
)

// Saver bulk-writes restaurants to storage.
type Saver interface {
	Save(ctx context.Context, rs []restaurant.Restaurant) error
}
