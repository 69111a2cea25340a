package store

import "context"

// Affected runs a write and returns how many rows it touched
func Affected(ctx context.Context, q RowQuerier, sql string, args ...any) (int64, error) {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	if tag == nil {
		return 0, nil
	}
	return tag.RowsAffected(), nil
}

// One scans the first row of sql; found is false on an empty result
// extra rows are ignored, callers select by primary key
func One[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) (item T, found bool, err error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return item, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return item, false, rows.Err()
	}
	if item, err = scan(rows); err != nil {
		return item, false, err
	}
	return item, true, nil
}

// Many scans every row of sql
// the result set is drained and closed before Many returns so callers may write through q afterwards
func Many[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
