package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/db"
)

// Hash field names of a stored restaurant.
const (
	fieldID          = "id"
	fieldName        = "name"
	fieldAddress     = "address"
	fieldCategory    = "category"
	fieldCategoryTag = "category_tag"
	fieldLocation    = "location"
	fieldPrice       = "price"
	fieldRating      = "rating"
	fieldReviewCount = "review_count"
	fieldCuisines    = "cuisines"
	fieldTags        = "tags"
	fieldOpening     = "opening"
	fieldClosing     = "closing"
)

// RestaurantIndex returns the FT index definition for restaurant hashes under prefix.
func RestaurantIndex(name, prefix string) *db.IndexDefinition {
	return db.NewIndex(name).
		OnHash().
		Prefix(prefix).
		SortableNumeric(fieldID).
		Text(fieldName).
		Tag(fieldCategoryTag).
		Geo(fieldLocation).
		Numeric(fieldPrice).
		TagWithOpts(fieldCuisines, ",", false).
		TagWithOpts(fieldTags, ",", false).
		MustBuild()
}

// EnsureIndex creates the restaurant index unless it already exists.
func (s *Store) EnsureIndex(ctx context.Context) error {
	exists, err := s.IndexExists(ctx, s.index)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	err = s.CreateIndex(ctx, RestaurantIndex(s.index, s.prefix))
	if errors.Is(err, db.ErrIndexExists) {
		return nil
	}
	return err
}

// CreateIndex creates an FT index from the given definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex removes an FT index by name.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	return nil
}

// IndexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	args := []string{idx.Name}

	storage := idx.StorageType
	if storage == "" {
		storage = db.StorageHash
	}
	args = append(args, "ON", string(storage))

	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}

	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		fieldArgs, err := buildFieldArgs(&idx.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}

	return args, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	args := []string{f.Name}

	if f.Alias != "" {
		args = append(args, "AS", f.Alias)
	}

	switch f.Type {
	case db.IndexFieldNumeric:
		args = append(args, "NUMERIC")

	case db.IndexFieldText:
		args = append(args, "TEXT")

	case db.IndexFieldGeo:
		args = append(args, "GEO")

	case db.IndexFieldTag:
		args = append(args, "TAG")
		if f.TagSeparator != "" {
			args = append(args, "SEPARATOR", f.TagSeparator)
		}
		if f.TagCaseSensitive {
			args = append(args, "CASESENSITIVE")
		}

	default:
		return nil, errors.New("unknown field type")
	}

	if f.Sortable {
		args = append(args, "SORTABLE")
	}

	return args, nil
}
