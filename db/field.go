package db

import "fmt"

// Field selects a column that can be listed on its own.
type Field int

const (
	FieldAlias Field = iota
	FieldService
)

func (f Field) String() string {
	switch f {
	case FieldAlias:
		return "alias"
	case FieldService:
		return "service"
	default:
		return "unknown"
	}
}

// Mutable selects a column that can be updated in place by alias.
type Mutable int

const (
	MutableCommand Mutable = iota
	MutableInfo
	MutableService
)

func (m Mutable) String() string {
	switch m {
	case MutableCommand:
		return "command"
	case MutableInfo:
		return "info"
	case MutableService:
		return "service"
	default:
		return "unknown"
	}
}

// Statements are fixed per column; column names never come from callers.
var (
	listStatements = map[Field]string{
		FieldAlias:   `SELECT alias FROM commands ORDER BY id`,
		FieldService: `SELECT service FROM commands ORDER BY id`,
	}

	updateStatements = map[Mutable]string{
		MutableCommand: `UPDATE commands SET command = ? WHERE alias = ?`,
		MutableInfo:    `UPDATE commands SET info = ? WHERE alias = ?`,
		MutableService: `UPDATE commands SET service = ? WHERE alias = ?`,
	}
)

// ListField returns one column across all commands in insertion order.
func (d *DB) ListField(f Field) ([]string, error) {
	stmt, ok := listStatements[f]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownField, f)
	}

	rows, err := d.conn.Query(stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
