package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Aggregates are stored whole in a JSONB column. These helpers decode the
// column back into the aggregate type.

func encodeDocument(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

func scanDocument[T any](row pgx.Row) (*T, error) {
	var data []byte
	if err := row.Scan(&data); err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &v, nil
}

func collectDocuments[T any](rows pgx.Rows, err error) ([]*T, error) {
	if err != nil {
		return nil, err
	}
	docs, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(docs))
	for _, data := range docs {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		out = append(out, &v)
	}
	return out, nil
}

// nullableReference maps the zero reference to NULL so the unique index
// only covers submitted propositions.
func nullableReference(ref int64) *int64 {
	if ref == 0 {
		return nil
	}
	return &ref
}
