package handlers

import (
	"net/http"
	"os"
	"runtime"
	"time"
)

// StatsHandler serves process and host telemetry. It never touches
// the databases.
type StatsHandler struct {
	startTime time.Time
}

func NewStatsHandler() *StatsHandler {
	return &StatsHandler{startTime: time.Now()}
}

// ServerStatsResponse represents the server telemetry payload
type ServerStatsResponse struct {
	Hostname      string  `json:"hostname"`
	PID           int     `json:"pid"`
	GoVersion     string  `json:"goVersion"`
	NumCPU        int     `json:"numCPU"`
	NumGoroutines int     `json:"numGoroutines"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
	MemAllocBytes uint64  `json:"memAllocBytes"`
	MemSysBytes   uint64  `json:"memSysBytes"`
	NumGC         uint32  `json:"numGC"`
}

// ServerStats returns process/host telemetry
func (h *StatsHandler) ServerStats(w http.ResponseWriter, r *http.Request) {
	hostname, _ := os.Hostname()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	writeJSON(w, http.StatusOK, ServerStatsResponse{
		Hostname:      hostname,
		PID:           os.Getpid(),
		GoVersion:     runtime.Version(),
		NumCPU:        runtime.NumCPU(),
		NumGoroutines: runtime.NumGoroutine(),
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		MemAllocBytes: mem.Alloc,
		MemSysBytes:   mem.Sys,
		NumGC:         mem.NumGC,
	})
}
