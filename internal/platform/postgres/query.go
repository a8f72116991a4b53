package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/taskboardhq/taskboard-api/internal/store"
)

// clauseBuilder accumulates positional query arguments so that WHERE,
// LIMIT and OFFSET fragments built separately share one numbering.
type clauseBuilder struct {
	args []any
}

// arg registers a query argument and returns its placeholder ($1, $2, ...).
func (b *clauseBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// likeEscaper neutralizes the LIKE pattern metacharacters in a search term
// so the term always matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildWhere composes a WHERE clause from the typed filters, translating
// logical field names through the given column allow-list. Filters are
// combined with AND; a search filter expands to an OR of case-insensitive
// ILIKE matches over its designated fields, with the term matched as a
// literal substring. Returns an empty string when no filter applies. An
// unknown field name is an error, never SQL.
func buildWhere(b *clauseBuilder, filters []store.Filter, columns map[string]string) (string, error) {
	var conditions []string

	for _, f := range filters {
		switch f := f.(type) {
		case store.SearchFilter:
			if f.Term == "" {
				continue
			}
			placeholder := b.arg("%" + likeEscaper.Replace(f.Term) + "%")
			var matches []string
			for _, field := range f.Fields {
				column, ok := columns[field]
				if !ok {
					return "", fmt.Errorf("unknown search field: %s", field)
				}
				matches = append(matches, column+` ILIKE `+placeholder+` ESCAPE '\'`)
			}
			if len(matches) == 0 {
				continue
			}
			conditions = append(conditions, "("+strings.Join(matches, " OR ")+")")

		case store.EqFilter:
			column, ok := columns[f.Field]
			if !ok {
				return "", fmt.Errorf("unknown filter field: %s", f.Field)
			}
			conditions = append(conditions, column+" = "+b.arg(f.Value))

		case store.TimeRangeFilter:
			column, ok := columns[f.Field]
			if !ok {
				return "", fmt.Errorf("unknown filter field: %s", f.Field)
			}
			if f.From != nil {
				conditions = append(conditions, column+" >= "+b.arg(*f.From))
			}
			if f.To != nil {
				conditions = append(conditions, column+" <= "+b.arg(*f.To))
			}

		default:
			return "", fmt.Errorf("unsupported filter type %T", f)
		}
	}

	if len(conditions) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conditions, " AND "), nil
}

// buildOrderBy composes an ORDER BY clause for a single-field sort,
// translating the logical field name through the column allow-list.
func buildOrderBy(sort store.Sort, columns map[string]string) (string, error) {
	column, ok := columns[sort.Field]
	if !ok {
		return "", fmt.Errorf("unknown sort field: %s", sort.Field)
	}

	direction := "DESC"
	if sort.Order == store.SortAsc {
		direction = "ASC"
	}

	return " ORDER BY " + column + " " + direction, nil
}

// buildLimitOffset composes the pagination tail of a list query.
func buildLimitOffset(b *clauseBuilder, page, limit int) string {
	return " LIMIT " + b.arg(limit) + " OFFSET " + b.arg(store.Offset(page, limit))
}

// runJointly executes the given functions concurrently when the store is
// backed by a connection pool, awaiting all of them and failing on the
// first error. A transaction cannot serve concurrent queries, so tx-backed
// stores run them sequentially.
func runJointly(ctx context.Context, db store.DBTX, fns ...func(context.Context) error) error {
	if _, pooled := db.(*sql.DB); !pooled {
		for _, fn := range fns {
			if err := fn(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		fn := fn
		g.Go(func() error { return fn(gctx) })
	}
	return g.Wait()
}
