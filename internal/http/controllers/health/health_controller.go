// Package health expone los endpoints de salud.
package health

import (
	"context"
	"net/http"
)

// Pinger chequea conectividad con el storage.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Controller struct {
	store Pinger
}

func NewController(store Pinger) *Controller {
	return &Controller{store: store}
}

// Healthz es liveness: el proceso responde.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Readyz es readiness: el storage responde.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	if c.store != nil {
		if err := c.store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("store unavailable"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
