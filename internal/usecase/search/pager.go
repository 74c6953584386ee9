package search

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/criteria"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/result"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type paging struct {
	Page        int `validate:"gte=1"`
	PageSize    int `validate:"gte=1,ltefield=MaxPageSize"`
	MaxPageSize int `validate:"gte=1"`
}

// clampPaging forces page and pageSize into range. maxPageSize <= 0 uses the
// package default.
func clampPaging(page, pageSize, maxPageSize int) (int, int, int) {
	if maxPageSize <= 0 {
		maxPageSize = criteria.MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, maxPageSize
}

// validatePaging checks clamped paging values.
func validatePaging(page, pageSize, maxPageSize int) error {
	err := validate.Struct(paging{Page: page, PageSize: pageSize, MaxPageSize: maxPageSize})
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.NewValidationError(fe.Field(), fmt.Sprintf("failed %q check", fe.Tag()))
	}
	return domain.NewValidationError("paging", err.Error())
}

// Paginate returns the 1-based page of rows plus totals. A page past the end
// is empty but still reports the correct totals.
func Paginate(rows []result.Row, page, pageSize, maxPageSize int) (slice []result.Row, total, totalPages int) {
	page, pageSize, _ = clampPaging(page, pageSize, maxPageSize)

	total = len(rows)
	totalPages = (total + pageSize - 1) / pageSize

	if page > totalPages {
		return []result.Row{}, total, totalPages
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	return rows[start:end], total, totalPages
}
