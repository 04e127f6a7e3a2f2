package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// QueryParams selects rows of a recorded table. Where and OrderBy are SQL
// fragments without their keywords; Where uses ? placeholders bound to Args.
type QueryParams struct {
	Where   string
	Args    []any
	OrderBy string

	// Limit of 0 returns every matching row.
	Limit  int
	Offset int
}

// DataReader reads back the tables written by a DataRecorder. A table must be
// mapped to the struct it was recorded from before it can be queried.
type DataReader interface {
	MapTable(tableName string, sampleEntry any)

	// ListTables returns the tables stored in the recording, sorted by name.
	ListTables(ctx context.Context) ([]string, error)

	// Query returns pointers to the decoded rows and the number of rows that
	// match params.Where regardless of Limit and Offset.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	Close() error
}

// rowLayout maps the columns of a table to the fields of its entry struct.
type rowLayout struct {
	entryType reflect.Type
	fieldOf   map[string]int
}

func newRowLayout(sampleEntry any) rowLayout {
	entryMustBeFlatStruct(sampleEntry)

	t := reflect.TypeOf(sampleEntry)
	l := rowLayout{entryType: t, fieldOf: make(map[string]int, t.NumField())}

	for i := 0; i < t.NumField(); i++ {
		l.fieldOf[t.Field(i).Name] = i
	}

	return l
}

// scanTargets points each column at its field in entry. Columns the struct
// does not carry are scanned into a discard slot.
func (l rowLayout) scanTargets(columns []string, entry reflect.Value) []any {
	targets := make([]any, len(columns))

	for i, col := range columns {
		if idx, ok := l.fieldOf[col]; ok {
			targets[i] = entry.Field(idx).Addr().Interface()
			continue
		}

		var discard any
		targets[i] = &discard
	}

	return targets
}

type sqliteReader struct {
	db      *sql.DB
	layouts map[string]rowLayout
}

// NewReader opens a recording file for reading.
func NewReader(dbFilename string) (DataReader, error) {
	db, err := sql.Open("sqlite3", dbFilename)
	if err != nil {
		return nil, err
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB reads from an open database. Closing the reader closes db.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		db:      db,
		layouts: make(map[string]rowLayout),
	}
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	r.layouts[tableName] = newRowLayout(sampleEntry)
}

func (r *sqliteReader) ListTables(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		names = append(names, name)
	}

	return names, rows.Err()
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	layout, ok := r.layouts[tableName]
	if !ok {
		return nil, 0, fmt.Errorf("table %s is not mapped", tableName)
	}

	var total int

	err := r.db.QueryRowContext(ctx,
		countStatement(tableName, params), params.Args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting %s: %w", tableName, err)
	}

	rows, err := r.db.QueryContext(ctx,
		selectStatement(tableName, params), params.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying %s: %w", tableName, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, 0, err
	}

	results := make([]any, 0)

	for rows.Next() {
		entry := reflect.New(layout.entryType)

		if err := rows.Scan(layout.scanTargets(columns, entry.Elem())...); err != nil {
			return nil, 0, err
		}

		results = append(results, entry.Interface())
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

func (r *sqliteReader) Close() error {
	return r.db.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func countStatement(tableName string, params QueryParams) string {
	var b strings.Builder

	b.WriteString("SELECT COUNT(*) FROM ")
	b.WriteString(quoteIdent(tableName))
	writeWhere(&b, params)

	return b.String()
}

func selectStatement(tableName string, params QueryParams) string {
	var b strings.Builder

	b.WriteString("SELECT * FROM ")
	b.WriteString(quoteIdent(tableName))
	writeWhere(&b, params)

	if params.OrderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(params.OrderBy)
	}

	switch {
	case params.Limit > 0:
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(params.Limit))
	case params.Offset > 0:
		// SQLite only accepts OFFSET after a LIMIT.
		b.WriteString(" LIMIT -1")
	}

	if params.Offset > 0 {
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.Itoa(params.Offset))
	}

	return b.String()
}

func writeWhere(b *strings.Builder, params QueryParams) {
	if params.Where == "" {
		return
	}

	b.WriteString(" WHERE ")
	b.WriteString(params.Where)
}
