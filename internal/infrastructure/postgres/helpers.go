package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-carservice-api/internal/domain"
)

// assignment is one "column = $n" pair of a partial update. Column names
// always come from constants in this package, never from callers.
type assignment struct {
	column string
	value  any
	cast   string
}

type updateSet []assignment

func (u *updateSet) add(column string, value any) {
	*u = append(*u, assignment{column: column, value: value})
}

func (u *updateSet) addJSON(column string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", column, err)
	}
	*u = append(*u, assignment{column: column, value: string(b), cast: "::jsonb"})
	return nil
}

type updateQuery struct {
	SQL  string
	Args []any
}

// buildUpdate renders an UPDATE for the given row id in assignment order and
// bumps updated_at. returning lists the columns to read back.
func buildUpdate(table string, set updateSet, id, returning string) (updateQuery, error) {
	if len(set) == 0 {
		return updateQuery{}, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	var b strings.Builder
	args := make([]any, 0, len(set)+1)
	fmt.Fprintf(&b, "UPDATE %s SET ", table)
	for i, a := range set {
		args = append(args, a.value)
		fmt.Fprintf(&b, "%s = $%d%s, ", a.column, i+1, a.cast)
	}
	args = append(args, id)
	fmt.Fprintf(&b, "updated_at = now() WHERE id = $%d RETURNING %s", len(args), returning)
	return updateQuery{SQL: b.String(), Args: args}, nil
}

func decodeList(raw []byte) ([]string, error) {
	out := []string{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode json list: %w", err)
	}
	return out, nil
}

func encodeList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// expectAffected reports domain.ErrNotFound when a statement touched no rows.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
