package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/db"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
)

const loadBatchSize = 500

// LoadRestaurants stores restaurants as hashes, pipelined in DoMulti batches.
// Fields from a previous version of the same id are cleared first.
func (s *Store) LoadRestaurants(ctx context.Context, rs []restaurant.Restaurant) error {
	for start := 0; start < len(rs); start += loadBatchSize {
		end := min(start+loadBatchSize, len(rs))
		if err := s.loadBatch(ctx, rs[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadBatch(ctx context.Context, rs []restaurant.Restaurant) error {
	cmds := make([]rueidis.Completed, 0, 2*len(rs))
	for _, r := range rs {
		key := s.key(r.ID())
		cmds = append(cmds, s.b().Del().Key(key).Build())

		hset := s.b().Hset().Key(key).FieldValue()
		for k, v := range encodeRestaurant(r) {
			hset = hset.FieldValue(k, v)
		}
		cmds = append(cmds, hset.Build())
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("restaurant %d: %w", rs[i/2].ID(), err)}
		}
	}
	return nil
}
