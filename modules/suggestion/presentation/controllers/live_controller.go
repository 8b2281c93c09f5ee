package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/suggestion-admin/pkg/application"
)

// LiveController upgrades /admin/ws to the sync event stream. Clients pick a
// table with ?channel=<table>; without it they receive every table.
type LiveController struct {
	hub application.Huber
}

func NewLiveController(app application.Application) application.Controller {
	return &LiveController{hub: app.Websocket()}
}

func (c *LiveController) Key() string {
	return "/admin/ws"
}

func (c *LiveController) Register(r *mux.Router) {
	if c.hub == nil {
		return
	}
	r.Handle("/admin/ws", c.hub).Methods(http.MethodGet)
}
