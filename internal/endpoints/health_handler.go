package endpoints

import (
	"net/http"
	"time"
)

type HealthStatus struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

type Health struct {
	Response APIResponse
	started  time.Time
}

func (h *Health) Init(started time.Time) {
	h.started = started
}

func (h *Health) GetHealthHandler(w http.ResponseWriter, r *http.Request) {
	h.Response.WriteResultResponse(w, HealthStatus{
		Status: "ok",
		Uptime: time.Since(h.started).Truncate(time.Second).String(),
	})
}
