package web

import (
	"embed"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/five82/minerui/internal/logtail"
	"github.com/five82/minerui/internal/metrics"
	"github.com/five82/minerui/internal/prefs"
	"github.com/five82/minerui/internal/state"
)

//go:embed static/index.html
var staticFS embed.FS

type processResponse struct {
	PID           int32   `json:"pid"`
	Name          string  `json:"name"`
	State         string  `json:"state"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryRSS     uint64  `json:"memory_rss"`
	Threads       int32   `json:"threads"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

type statusResponse struct {
	Status              string           `json:"status"`
	State               string           `json:"state"`
	Process             *processResponse `json:"process,omitempty"`
	LastUpdated         *time.Time       `json:"last_updated,omitempty"`
	LastError           string           `json:"last_error,omitempty"`
	ConsecutiveFailures int              `json:"consecutive_failures"`
	Offline             bool             `json:"offline"`
	LastSeq             uint64           `json:"last_seq"`
}

type consoleLine struct {
	Seq   uint64        `json:"seq"`
	Time  time.Time     `json:"time"`
	Text  string        `json:"text"`
	Level logtail.Level `json:"level,omitempty"`
}

type consoleResponse struct {
	Lines   []consoleLine `json:"lines"`
	LastSeq uint64        `json:"last_seq"`
}

type prefsResponse struct {
	Theme    string `json:"theme"`
	DarkMode bool   `json:"dark_mode"`
}

type prefsRequest struct {
	DarkMode *bool `json:"dark_mode" binding:"required"`
}

func (b *Backend) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(b.opts.CORS))
	r.Use(metrics.Middleware(b.opts.Metrics))
	r.Use(accessLog(b.logger))

	r.GET("/", b.handleIndex)
	r.GET("/health", b.handleHealth)
	r.GET("/ws", b.handleWS)
	if b.opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(b.opts.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		api.GET("/status", b.handleStatus)
		api.GET("/console", b.handleConsole)
		api.GET("/prefs", b.handleGetPrefs)
		api.PUT("/prefs", b.handlePutPrefs)
		api.POST("/stop", rateLimit(b.opts.StopLimit), b.handleStop)
	}
	return r
}

func (b *Backend) handleIndex(c *gin.Context) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (b *Backend) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (b *Backend) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, newStatusResponse(b.opts.Store.Snapshot()))
}

func (b *Backend) handleConsole(c *gin.Context) {
	since, err := parseSince(c.Query("since"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "since must be a non-negative integer"})
		return
	}
	c.JSON(http.StatusOK, consoleResponse{
		Lines:   newConsoleLines(b.opts.Store.LinesSince(since)),
		LastSeq: b.opts.Store.LastSeq(),
	})
}

func (b *Backend) handleGetPrefs(c *gin.Context) {
	c.JSON(http.StatusOK, newPrefsResponse(b.opts.Prefs.Get()))
}

func (b *Backend) handlePutPrefs(c *gin.Context) {
	var req prefsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"dark_mode\": bool}"})
		return
	}
	p, err := b.opts.Prefs.Update(func(p *prefs.Prefs) {
		p.DarkMode = *req.DarkMode
	})
	if err != nil {
		b.logger.Warn("failed to save preferences", zap.Error(err))
	}
	c.JSON(http.StatusOK, newPrefsResponse(p))
}

func (b *Backend) handleStop(c *gin.Context) {
	b.logger.Info("stop requested from web console", zap.String("client", c.ClientIP()))
	b.opts.Store.SetStatus("Stopping...")
	if onClose := b.opts.OnClose; onClose != nil {
		go onClose()
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "stopping"})
}

func parseSince(raw string) (uint64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}

func newStatusResponse(snap state.Snapshot) statusResponse {
	resp := statusResponse{
		Status:              snap.StatusText,
		State:               stateLabel(snap),
		ConsecutiveFailures: snap.ConsecutiveFailures,
		Offline:             snap.IsOffline(),
		LastSeq:             snap.LastSeq,
	}
	if snap.HasProcess {
		p := snap.Process
		resp.Process = &processResponse{
			PID:           p.PID,
			Name:          p.Name,
			State:         p.StateLabel(),
			CPUPercent:    p.CPUPercent,
			MemoryRSS:     p.MemoryRSS,
			Threads:       p.NumThreads,
			UptimeSeconds: int64(p.Uptime() / time.Second),
		}
	}
	if !snap.LastUpdated.IsZero() {
		t := snap.LastUpdated
		resp.LastUpdated = &t
	}
	if snap.LastError != nil {
		resp.LastError = snap.LastError.Error()
	}
	return resp
}

// stateLabel matches the badge shown by the terminal console.
func stateLabel(snap state.Snapshot) string {
	switch {
	case snap.IsOffline():
		return "offline"
	case !snap.HasProcess:
		return "waiting"
	default:
		return snap.Process.StateLabel()
	}
}

func newConsoleLines(lines []state.Line) []consoleLine {
	out := make([]consoleLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, consoleLine{
			Seq:   l.Seq,
			Time:  l.Time,
			Text:  l.Text,
			Level: logtail.DetectLevel(l.Text),
		})
	}
	return out
}

func newPrefsResponse(p prefs.Prefs) prefsResponse {
	return prefsResponse{Theme: p.Theme, DarkMode: p.DarkMode}
}
