package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"foundersbook-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DBPinger is optional; a nil pinger reports the database as disconnected.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

type Report struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64  `json:"uptimeSeconds"`
	HeapAllocMB   uint64 `json:"heapAllocMb"`
	Goroutines    int    `json:"goroutines"`
	GoVersion     string `json:"goVersion"`
	Platform      string `json:"platform"`
}

type TrafficInfo struct {
	TotalRequests   int             `json:"totalRequests"`
	SuccessCount    int             `json:"successCount"`
	FailedCount     int             `json:"failedCount"`
	SuccessRate     string          `json:"successRate"`
	AvgResponseTime string          `json:"avgResponseTime"`
	LastRequest     json.RawMessage `json:"lastRequest,omitempty"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

func ping(ctx context.Context, fn func(context.Context) error) DepStatus {
	start := time.Now()
	if err := fn(ctx); err != nil {
		return DepStatus{Status: "error"}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: "connected", PingMs: &ms}
}

// Collect pings the database and Redis and reads the traffic counters that
// middleware.HealthMarker maintains. Status is "ok" only when both are
// connected.
func Collect(ctx context.Context, rdb *redis.Client, db DBPinger) Report {
	r := Report{
		Dependencies: map[string]DepStatus{
			"database": {Status: "disconnected"},
			"redis":    {Status: "disconnected"},
		},
		Traffic: TrafficInfo{SuccessRate: "100", AvgResponseTime: "0"},
	}
	if db != nil {
		r.Dependencies["database"] = ping(ctx, db.PingContext)
	}

	started := time.Now().UnixMilli()
	if rdb != nil {
		dep := ping(ctx, func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		r.Dependencies["redis"] = dep
		if dep.Status == "connected" {
			started = readTraffic(ctx, rdb, &r.Traffic, started)
		}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := (time.Now().UnixMilli() - started) / 1000
	if uptime < 0 {
		uptime = 0
	}
	r.Runtime = RuntimeInfo{
		UptimeSeconds: uptime,
		HeapAllocMB:   m.HeapAlloc / 1024 / 1024,
		Goroutines:    runtime.NumGoroutine(),
		GoVersion:     runtime.Version(),
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
	}

	r.Status = "ok"
	for _, d := range r.Dependencies {
		if d.Status != "connected" {
			r.Status = "issue"
		}
	}
	return r
}

// readTraffic fills t from Redis and returns the recorded start time in
// unix milliseconds, initialising it to fallback when unset.
func readTraffic(ctx context.Context, rdb *redis.Client, t *TrafficInfo, fallback int64) int64 {
	vals, err := rdb.MGet(ctx,
		middleware.KeyReqTotal,
		middleware.KeyReqErrors,
		middleware.KeyResTime,
		middleware.KeyResCount,
		middleware.KeyStartTime,
		middleware.KeyLastReq,
	).Result()
	if err != nil {
		return fallback
	}
	str := func(i int) string {
		s, _ := vals[i].(string)
		return s
	}

	t.TotalRequests, _ = strconv.Atoi(str(0))
	t.FailedCount, _ = strconv.Atoi(str(1))
	t.SuccessCount = t.TotalRequests - t.FailedCount
	if t.TotalRequests > 0 {
		t.SuccessRate = strconv.FormatFloat(float64(t.SuccessCount)/float64(t.TotalRequests)*100, 'f', 1, 64)
	}
	totalMs, _ := strconv.ParseFloat(str(2), 64)
	count, _ := strconv.Atoi(str(3))
	if count > 0 {
		t.AvgResponseTime = strconv.FormatFloat(totalMs/float64(count), 'f', 2, 64)
	}
	if last := str(5); last != "" && json.Valid([]byte(last)) {
		t.LastRequest = json.RawMessage(last)
	}

	if s := str(4); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v
		}
	}
	rdb.Set(ctx, middleware.KeyStartTime, fallback, 0)
	return fallback
}
