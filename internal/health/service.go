package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"brokerage-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DBPinger is optional. If nil, the database is reported as disconnected.
type DBPinger interface {
	Ping() error
}

// Report is the body of /health/json.
type Report struct {
	Service      string               `json:"service"`
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	AllocMB     int `json:"allocMb"`
	HeapInUseMB int `json:"heapInUseMb"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

// Collector gathers health from the database, redis, and the traffic counters
// that middleware.HealthMarker keeps in redis.
type Collector struct {
	Rdb     *redis.Client
	DB      DBPinger
	Service string
}

func (c *Collector) Collect(ctx context.Context) Report {
	r := Report{
		Service:      c.Service,
		Dependencies: make(map[string]DepStatus, 2),
	}
	if r.Service == "" {
		r.Service = "brokerage-backend"
	}

	r.Dependencies["database"] = c.pingDB()
	redisDep, traffic, startMs := c.collectRedis(ctx)
	r.Dependencies["redis"] = redisDep
	r.Traffic = traffic

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := (time.Now().UnixMilli() - startMs) / 1000
	if uptime < 0 {
		uptime = 0
	}
	r.Runtime = RuntimeInfo{
		UptimeSeconds: uptime,
		Memory:        MemoryInfo{AllocMB: int(m.Alloc / 1024 / 1024), HeapInUseMB: int(m.HeapInuse / 1024 / 1024)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}

	if r.Dependencies["database"].Status == "connected" && redisDep.Status == "connected" {
		r.Status = "ok"
	} else {
		r.Status = "issue"
	}
	return r
}

func (c *Collector) pingDB() DepStatus {
	if c.DB == nil {
		return DepStatus{Status: "disconnected"}
	}
	start := time.Now()
	if err := c.DB.Ping(); err != nil {
		return DepStatus{Status: "error"}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: "connected", PingMs: &ms}
}

// collectRedis pings redis and reads the traffic counters. The returned start time
// (unix ms) is seeded in redis on first use so uptime survives restarts.
func (c *Collector) collectRedis(ctx context.Context) (DepStatus, TrafficInfo, int64) {
	stats := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	startMs := time.Now().UnixMilli()
	if c.Rdb == nil {
		return DepStatus{Status: "disconnected"}, stats, startMs
	}
	start := time.Now()
	if err := c.Rdb.Ping(ctx).Err(); err != nil {
		return DepStatus{Status: "error"}, stats, startMs
	}
	ms := time.Since(start).Milliseconds()
	dep := DepStatus{Status: "connected", PingMs: &ms}

	vals, err := c.Rdb.MGet(ctx,
		middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime,
		middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq,
	).Result()
	if err != nil {
		return dep, stats, startMs
	}
	str := func(i int) string {
		s, _ := vals[i].(string)
		return s
	}

	if t, err := strconv.ParseInt(str(4), 10, 64); err == nil {
		startMs = t
	} else {
		c.Rdb.Set(ctx, middleware.KeyStartTime, startMs, 0)
	}
	stats.TotalRequests, _ = strconv.Atoi(str(0))
	stats.FailedCount, _ = strconv.Atoi(str(1))
	stats.SuccessCount = stats.TotalRequests - stats.FailedCount
	if stats.TotalRequests > 0 {
		stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(str(2), 64)
	if count, _ := strconv.Atoi(str(3)); count > 0 {
		stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(count), 'f', 2, 64)
	}
	if last := str(5); last != "" {
		var lastReq map[string]interface{}
		_ = json.Unmarshal([]byte(last), &lastReq)
		stats.LastRequest = lastReq
	}
	return dep, stats, startMs
}
