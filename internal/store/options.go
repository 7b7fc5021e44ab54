package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/tupyy/expsum/internal/models"
)

type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func ByStatus(statuses ...models.RunStatus) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(statuses) == 0 {
			return b
		}
		values := make([]string, 0, len(statuses))
		for _, s := range statuses {
			values = append(values, s.Value())
		}
		return b.Where(sq.Eq{"status": values})
	}
}

func ByMechanism(mechanisms ...models.Mechanism) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(mechanisms) == 0 {
			return b
		}
		values := make([]string, 0, len(mechanisms))
		for _, m := range mechanisms {
			values = append(values, m.String())
		}
		return b.Where(sq.Eq{"mechanism": values})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(limit)
	}
}

func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Offset(offset)
	}
}

// WithDefaultSort lists the newest runs first, id breaking ties.
func WithDefaultSort() ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.OrderBy("created_at DESC", "id")
	}
}
