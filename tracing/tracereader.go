package tracing

import (
	"context"
	"strings"

	"github.com/sarchlab/xfiles/datarecording"
)

// TaskQuery selects tasks from a recorded trace. Empty fields match
// everything.
type TaskQuery struct {
	ID       string
	ParentID string
	Kind     string
	Location string
	Result   string

	// Limit of 0 returns every match. Tasks are ordered by start time.
	Limit  int
	Offset int
}

func (q TaskQuery) params() datarecording.QueryParams {
	var (
		conds []string
		args  []any
	)

	match := func(column, value string) {
		if value == "" {
			return
		}

		conds = append(conds, column+" = ?")
		args = append(args, value)
	}

	match("ID", q.ID)
	match("ParentID", q.ParentID)
	match("Kind", q.Kind)
	match("Location", q.Location)
	match("Result", q.Result)

	return datarecording.QueryParams{
		Where:   strings.Join(conds, " AND "),
		Args:    args,
		OrderBy: "StartTime, ID",
		Limit:   q.Limit,
		Offset:  q.Offset,
	}
}

// TraceReader reads back what a DBTracer recorded.
type TraceReader struct {
	reader datarecording.DataReader
}

// OpenTrace opens a recording file written by a DBTracer.
func OpenTrace(filename string) (*TraceReader, error) {
	r, err := datarecording.NewReader(filename)
	if err != nil {
		return nil, err
	}

	return NewTraceReader(r), nil
}

// NewTraceReader maps the tracer tables on r.
func NewTraceReader(r datarecording.DataReader) *TraceReader {
	r.MapTable(TraceTable, TaskTableEntry{})
	r.MapTable(TraceStepTable, StepTableEntry{})
	r.MapTable(AttachmentsTable, AttachmentTableEntry{})

	return &TraceReader{reader: r}
}

// ListTasks returns the tasks selected by q and the number of tasks that match
// q before Limit and Offset apply.
func (r *TraceReader) ListTasks(
	ctx context.Context,
	q TaskQuery,
) ([]TaskTableEntry, int, error) {
	rows, total, err := r.reader.Query(ctx, TraceTable, q.params())
	if err != nil {
		return nil, 0, err
	}

	return derefRows[TaskTableEntry](rows), total, nil
}

// ListSteps returns the steps of a task in the order they happened.
func (r *TraceReader) ListSteps(
	ctx context.Context,
	taskID string,
) ([]StepTableEntry, error) {
	rows, _, err := r.reader.Query(ctx, TraceStepTable,
		datarecording.QueryParams{
			Where:   "TaskID = ?",
			Args:    []any{taskID},
			OrderBy: "Time",
		})
	if err != nil {
		return nil, err
	}

	return derefRows[StepTableEntry](rows), nil
}

// ListAttachments returns the configurations attached to the ANT, oldest
// first.
func (r *TraceReader) ListAttachments(
	ctx context.Context,
) ([]AttachmentTableEntry, error) {
	rows, _, err := r.reader.Query(ctx, AttachmentsTable,
		datarecording.QueryParams{OrderBy: "Time"})
	if err != nil {
		return nil, err
	}

	return derefRows[AttachmentTableEntry](rows), nil
}

// Close closes the underlying recording.
func (r *TraceReader) Close() error {
	return r.reader.Close()
}

func derefRows[T any](rows []any) []T {
	out := make([]T, len(rows))
	for i, row := range rows {
		out[i] = *row.(*T)
	}

	return out
}
