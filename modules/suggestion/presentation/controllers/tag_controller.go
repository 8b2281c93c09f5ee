package controllers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/suggestion-admin/modules/suggestion/presentation/viewmodels"
	"github.com/iota-uz/suggestion-admin/pkg/application"
	"github.com/iota-uz/suggestion-admin/pkg/tagcolor"
)

// TagController resolves palette colors for tag labels.
type TagController struct {
	basePath string
}

func NewTagController(app application.Application) application.Controller {
	return &TagController{basePath: "/admin/tags"}
}

func (c *TagController) Key() string {
	return c.basePath
}

func (c *TagController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/{label}", c.Get).Methods(http.MethodGet)
}

func (c *TagController) Get(w http.ResponseWriter, r *http.Request) {
	label := mux.Vars(r)["label"]
	writeJSON(w, http.StatusOK, viewmodels.Tag{Label: label, Color: string(tagcolor.ColorFor(label))})
}

// List answers ?labels=a,b,c with one entry per non-empty label.
func (c *TagController) List(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("labels")
	if strings.TrimSpace(raw) == "" {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_QUERY", "labels is required")
		return
	}
	colors := tagcolor.Colors(strings.Split(raw, ",")...)
	out := make([]viewmodels.Tag, 0, len(colors))
	for _, label := range strings.Split(raw, ",") {
		color, ok := colors[label]
		if !ok {
			continue
		}
		delete(colors, label)
		out = append(out, viewmodels.Tag{Label: label, Color: string(color)})
	}
	writeJSON(w, http.StatusOK, out)
}
