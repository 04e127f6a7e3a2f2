// Package monitoring serves the state of a running X-FILES platform over
// HTTP, and lets the user kill transactions from outside the process.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/xfiles/accel"
	"github.com/sarchlab/xfiles/logging"
	"github.com/sarchlab/xfiles/monitoring/web"
	"github.com/sarchlab/xfiles/tracing"
	"github.com/sarchlab/xfiles/xfiles"
)

// A Component is anything the monitor can show field by field.
type Component interface {
	Name() string
}

// Monitor turns a platform into a server that can be inspected and
// controlled from a browser.
type Monitor struct {
	manager    *xfiles.Manager
	components []Component
	portNumber int
	log        *slog.Logger

	traceReader  *tracing.TraceReader
	traceFlusher Flusher

	server   *http.Server
	listener net.Listener

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{log: slog.New(slog.DiscardHandler)}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		if portNumber != 0 {
			fmt.Fprintf(os.Stderr,
				"Port number %d is assigned to the monitoring server, "+
					"which is not allowed. Using a random port instead.\n", portNumber)
		}

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithLogger sets the logger.
func (m *Monitor) WithLogger(logger *slog.Logger) *Monitor {
	m.log = logging.For(logger, logging.ComponentMonitor)
	return m
}

// RegisterManager registers the transaction manager to expose. The manager is
// also registered as a component.
func (m *Monitor) RegisterManager(manager *xfiles.Manager) {
	m.manager = manager
	m.RegisterComponent(manager)
}

// RegisterComponent register a component to be monitored.
func (m *Monitor) RegisterComponent(c Component) {
	m.components = append(m.components, c)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the handler of all the monitor endpoints.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/ant", m.describeANT).Methods(http.MethodGet)
	r.HandleFunc("/api/transactions", m.listTransactions).Methods(http.MethodGet)
	r.HandleFunc("/api/transaction/{tid}/kill", m.killTransaction).
		Methods(http.MethodPost)
	r.HandleFunc("/api/transaction/{tid}/retire", m.retireTransaction).
		Methods(http.MethodPost)
	r.HandleFunc("/api/trace", m.listTraceTasks).Methods(http.MethodGet)
	r.HandleFunc("/api/trace/{id}/steps", m.listTraceSteps).
		Methods(http.MethodGet)
	r.HandleFunc("/api/attachments", m.listAttachments).Methods(http.MethodGet)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/echo/{value}", m.echo)
	r.HandleFunc("/api/id", m.id)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts serving in the background and returns the port in use.
func (m *Monitor) StartServer() int {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.listener = listener
	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	port := listener.Addr().(*net.TCPAddr).Port

	fmt.Fprintf(os.Stderr, "Monitoring X-FILES with http://localhost:%d\n", port)

	go func() {
		err := m.server.Serve(listener)
		if !errors.Is(err, http.ErrServerClosed) {
			dieOnErr(err)
		}
	}()

	return port
}

// StopServer shuts the server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) managerOr503(w http.ResponseWriter) *xfiles.Manager {
	if m.manager == nil {
		http.Error(w, "no transaction manager", http.StatusServiceUnavailable)
	}

	return m.manager
}

func (m *Monitor) describeANT(w http.ResponseWriter, _ *http.Request) {
	manager := m.managerOr503(w)
	if manager == nil {
		return
	}

	table := manager.Table()
	if table == nil {
		http.Error(w, "ANT pointer not set", http.StatusNotFound)
		return
	}

	snapshot, err := table.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusGone)
		return
	}

	writeJSON(w, snapshot)
}

func (m *Monitor) listTransactions(w http.ResponseWriter, _ *http.Request) {
	manager := m.managerOr503(w)
	if manager == nil {
		return
	}

	txns := manager.Transactions()
	if txns == nil {
		txns = []xfiles.TransactionInfo{}
	}

	writeJSON(w, txns)
}

func parseTID(w http.ResponseWriter, r *http.Request) (accel.TID, bool) {
	tid, err := strconv.ParseUint(mux.Vars(r)["tid"], 10, 16)
	if err != nil {
		http.Error(w, "invalid TID", http.StatusBadRequest)
		return 0, false
	}

	return accel.TID(tid), true
}

func (m *Monitor) killTransaction(w http.ResponseWriter, r *http.Request) {
	m.controlTransaction(w, r, "kill")
}

func (m *Monitor) retireTransaction(w http.ResponseWriter, r *http.Request) {
	m.controlTransaction(w, r, "retire")
}

func (m *Monitor) controlTransaction(
	w http.ResponseWriter,
	r *http.Request,
	action string,
) {
	manager := m.managerOr503(w)
	if manager == nil {
		return
	}

	tid, ok := parseTID(w, r)
	if !ok {
		return
	}

	var err error

	switch action {
	case "kill":
		err = manager.KillTransaction(tid)
	case "retire":
		err = manager.Retire(tid)
	}

	if errors.Is(err, xfiles.ErrInvalidTID) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	dieOnErr(err)

	m.log.Info("transaction controlled from monitor", "action", action, "tid", tid)

	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.components))
	for _, c := range m.components {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) Component {
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}

	http.Error(w, "Component not found", http.StatusNotFound)

	return nil
}

type echoRsp struct {
	Sent     uint32 `json:"sent"`
	Received uint64 `json:"received"`
}

func (m *Monitor) echo(w http.ResponseWriter, r *http.Request) {
	manager := m.managerOr503(w)
	if manager == nil {
		return
	}

	value, err := strconv.ParseUint(mux.Vars(r)["value"], 0, 32)
	if err != nil {
		http.Error(w, "invalid value", http.StatusBadRequest)
		return
	}

	received, err := manager.DebugEcho(uint32(value))
	dieOnErr(err)

	writeJSON(w, echoRsp{Sent: uint32(value), Received: received})
}

type idRsp struct {
	Raw          string `json:"raw"`
	Version      int    `json:"version"`
	NumTIDs      int    `json:"num_tids"`
	NumPEs       int    `json:"num_pes"`
	CacheEntries int    `json:"cache_entries"`
	Description  string `json:"description"`
}

func (m *Monitor) id(w http.ResponseWriter, _ *http.Request) {
	manager := m.managerOr503(w)
	if manager == nil {
		return
	}

	id, err := manager.ID()
	dieOnErr(err)

	writeJSON(w, idRsp{
		Raw:          fmt.Sprintf("%#016x", uint64(id)),
		Version:      id.Version(),
		NumTIDs:      id.NumTIDs(),
		NumPEs:       id.NumPEs(),
		CacheEntries: id.CacheEntries(),
		Description:  id.String(),
	})
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bars := m.progressBars
	if bars == nil {
		bars = []*ProgressBar{}
	}

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
