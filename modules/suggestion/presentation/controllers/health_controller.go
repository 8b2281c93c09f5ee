package controllers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/iota-uz/suggestion-admin/modules/suggestion/services"
	"github.com/iota-uz/suggestion-admin/pkg/application"
)

type tableHealth struct {
	Rows      int    `json:"rows"`
	State     string `json:"state"`
	Busy      bool   `json:"busy"`
	Reference int    `json:"reference"`
}

type healthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Tables    map[string]tableHealth `json:"tables"`
}

type HealthController struct {
	tables *services.TableService
}

func NewHealthController(app application.Application) application.Controller {
	return &HealthController{
		tables: app.Service(services.TableService{}).(*services.TableService),
	}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.Get).Methods(http.MethodGet)
}

func (c *HealthController) Get(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Tables:    make(map[string]tableHealth),
	}
	for _, name := range c.tables.Names() {
		ctl, err := c.tables.Get(name)
		if err != nil {
			continue
		}
		snap := ctl.Snapshot()
		resp.Tables[name] = tableHealth{
			Rows:      len(snap.Rows),
			State:     snap.State.String(),
			Busy:      snap.Busy,
			Reference: len(snap.ReferenceKeys),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
