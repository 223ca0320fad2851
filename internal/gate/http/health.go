package http

import (
	"net/http"
	"time"

	"github.com/tradelane/tradegate/internal/gate/store"
	"github.com/tradelane/tradegate/pkg/httpx"
	"github.com/tradelane/tradegate/pkg/slogx"
)

// HealthResponse is the liveness probe body.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Returns 200 with uptime and version whenever the process is running.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Returns 200 when the database is reachable, 503 otherwise.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	httpx.StatusBody
//	@Failure		503	{object}	httpx.StatusBody
//	@Router			/readyz [get].
func ReadyzHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			slogx.FromContext(r.Context()).Error("readiness check failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, httpx.StatusBody{Status: true, Message: "ready"})
	}
}
