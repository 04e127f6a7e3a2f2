package tracing

import (
	"fmt"
	"sync"

	"github.com/sarchlab/xfiles/ant"
	"github.com/sarchlab/xfiles/datarecording"
	"github.com/sarchlab/xfiles/hooking"
	"github.com/tebeka/atexit"
)

// Table names used by the DBTracer.
const (
	TraceTable       = "trace"
	TraceStepTable   = "trace_steps"
	AttachmentsTable = "attachments"
)

// TaskTableEntry is one finished task as stored in the trace table. Times are
// nanoseconds since the Unix epoch.
type TaskTableEntry struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	Location  string
	StartTime int64
	EndTime   int64
	NumSteps  int
	Result    string
}

// StepTableEntry is one step of a task.
type StepTableEntry struct {
	TaskID string
	Time   int64
	What   string
}

// AttachmentTableEntry is one configuration attached to the ANT.
type AttachmentTableEntry struct {
	Time   int64
	ASID   int
	NNID   int
	Size   int
	Source string
}

// DBTracer is a tracer that can store tasks into a database. It also records
// the attachments of a table when registered as a hook on it.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller TimeTeller
	backend    datarecording.DataRecorder

	tracingTasks map[string]Task
	terminated   bool
}

// NewDBTracer creates a new DBTracer.
func NewDBTracer(
	timeTeller TimeTeller,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable(TraceTable, TaskTableEntry{})
	dataRecorder.CreateTable(TraceStepTable, StepTableEntry{})
	dataRecorder.CreateTable(AttachmentsTable, AttachmentTableEntry{})

	t := &DBTracer{
		timeTeller:   timeTeller,
		backend:      dataRecorder,
		tracingTasks: make(map[string]Task),
	}

	atexit.Register(t.Terminate)

	return t
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	startingTaskMustBeValid(task)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	task.StartTime = t.timeTeller.Now()
	t.tracingTasks[task.ID] = task
}

func startingTaskMustBeValid(task Task) {
	if task.ID == "" {
		panic("task ID must be set")
	}

	if task.Kind == "" {
		panic("task kind must be set")
	}

	if task.What == "" {
		panic("task what must be set")
	}

	if task.Where == "" {
		panic("task location must be set")
	}
}

// StepTask records the steps carried by the task.
func (t *DBTracer) StepTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	original, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	now := t.timeTeller.Now()
	for _, step := range task.Steps {
		step.Time = now
		original.Steps = append(original.Steps, step)
	}

	t.tracingTasks[task.ID] = original
}

// EndTask writes the task into the database.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	original, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	delete(t.tracingTasks, task.ID)

	original.EndTime = t.timeTeller.Now()
	if task.Detail != nil {
		original.Detail = task.Detail
	}

	t.writeTask(original)
}

func (t *DBTracer) writeTask(task Task) {
	entry := TaskTableEntry{
		ID:        task.ID,
		ParentID:  task.ParentID,
		Kind:      task.Kind,
		What:      task.What,
		Location:  task.Where,
		StartTime: task.StartTime.UnixNano(),
		EndTime:   task.EndTime.UnixNano(),
		NumSteps:  len(task.Steps),
	}

	if task.Detail != nil {
		entry.Result = fmt.Sprint(task.Detail)
	}

	t.backend.InsertData(TraceTable, entry)

	for _, step := range task.Steps {
		t.backend.InsertData(TraceStepTable, StepTableEntry{
			TaskID: task.ID,
			Time:   step.Time.UnixNano(),
			What:   step.What,
		})
	}
}

// Func records attachments reported by an ant.Table.
func (t *DBTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != ant.HookPosAttach {
		return
	}

	evt := ctx.Item.(ant.AttachEvent)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	t.backend.InsertData(AttachmentsTable, AttachmentTableEntry{
		Time:   t.timeTeller.Now().UnixNano(),
		ASID:   int(evt.ASID),
		NNID:   int(evt.NNID),
		Size:   evt.Size,
		Source: evt.Source,
	})
}

// NumInFlight returns the number of tasks started but not ended.
func (t *DBTracer) NumInFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.tracingTasks)
}

// Terminate writes the unfinished tasks with the current time as their end
// time and flushes the backend. Later tasks are ignored.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	now := t.timeTeller.Now()
	for _, task := range t.tracingTasks {
		task.EndTime = now
		task.Detail = "unfinished"
		t.writeTask(task)
	}

	t.tracingTasks = nil
	t.terminated = true

	_ = t.backend.Flush()
}
