package monitoring

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sarchlab/xfiles/tracing"
)

// A Flusher writes buffered trace entries so that a reader can see them.
type Flusher interface {
	Flush() error
}

// RegisterTrace exposes a recorded trace. The flusher, if not nil, is flushed
// before every read so that the pages show the tasks finished so far.
func (m *Monitor) RegisterTrace(reader *tracing.TraceReader, flusher Flusher) {
	m.traceReader = reader
	m.traceFlusher = flusher
}

type taskPage struct {
	Total int                      `json:"total"`
	Tasks []tracing.TaskTableEntry `json:"tasks"`
}

func (m *Monitor) traceOr503(w http.ResponseWriter) *tracing.TraceReader {
	if m.traceReader == nil {
		http.Error(w, "no trace recorded", http.StatusServiceUnavailable)
		return nil
	}

	if m.traceFlusher != nil {
		if err := m.traceFlusher.Flush(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return nil
		}
	}

	return m.traceReader
}

func parseTaskQuery(r *http.Request) (tracing.TaskQuery, error) {
	v := r.URL.Query()
	q := tracing.TaskQuery{
		ID:       v.Get("id"),
		ParentID: v.Get("parent"),
		Kind:     v.Get("kind"),
		Location: v.Get("location"),
		Result:   v.Get("result"),
	}

	var err error

	if s := v.Get("limit"); s != "" {
		if q.Limit, err = strconv.Atoi(s); err != nil {
			return q, err
		}
	}

	if s := v.Get("offset"); s != "" {
		if q.Offset, err = strconv.Atoi(s); err != nil {
			return q, err
		}
	}

	return q, nil
}

func (m *Monitor) listTraceTasks(w http.ResponseWriter, r *http.Request) {
	reader := m.traceOr503(w)
	if reader == nil {
		return
	}

	q, err := parseTaskQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tasks, total, err := reader.ListTasks(r.Context(), q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, taskPage{Total: total, Tasks: tasks})
}

func (m *Monitor) listTraceSteps(w http.ResponseWriter, r *http.Request) {
	reader := m.traceOr503(w)
	if reader == nil {
		return
	}

	steps, err := reader.ListSteps(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, steps)
}

func (m *Monitor) listAttachments(w http.ResponseWriter, r *http.Request) {
	reader := m.traceOr503(w)
	if reader == nil {
		return
	}

	attachments, err := reader.ListAttachments(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, attachments)
}
