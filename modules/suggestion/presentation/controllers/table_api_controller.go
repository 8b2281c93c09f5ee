package controllers

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/suggestion-admin/modules/suggestion/presentation/mappers"
	"github.com/iota-uz/suggestion-admin/modules/suggestion/services"
	"github.com/iota-uz/suggestion-admin/pkg/application"
	"github.com/iota-uz/suggestion-admin/pkg/fields"
	"github.com/iota-uz/suggestion-admin/pkg/tablectl"
)

type TableAPIController struct {
	tables   *services.TableService
	basePath string
}

func NewTableAPIController(app application.Application) application.Controller {
	return &TableAPIController{
		tables:   app.Service(services.TableService{}).(*services.TableService),
		basePath: "/admin",
	}
}

func (c *TableAPIController) Key() string {
	return c.basePath
}

func (c *TableAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.basePath).Subrouter()

	// {table} only matches registered names so /admin/ws and /admin/tags
	// stay reachable.
	names := c.tables.Names()
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		quoted = append(quoted, regexp.QuoteMeta(n))
	}
	table := "/{table:" + strings.Join(quoted, "|") + "}"

	api.HandleFunc("/tables", c.ListTables).Methods(http.MethodGet)
	api.HandleFunc(table, c.GetTable).Methods(http.MethodGet)
	api.HandleFunc(table+"/violations", c.GetViolations).Methods(http.MethodGet)
	api.HandleFunc(table+"/notices", c.ClearNotices).Methods(http.MethodDelete)

	api.HandleFunc(table+"/rows", c.AddRow).Methods(http.MethodPost)
	api.HandleFunc(table+"/rows/{key:[0-9]+}", c.SetFields).Methods(http.MethodPatch)
	api.HandleFunc(table+"/rows/{key:[0-9]+}", c.DeleteRow).Methods(http.MethodDelete)
	api.HandleFunc(table+"/rows/{key:[0-9]+}/discard", c.DiscardRow).Methods(http.MethodPost)
	api.HandleFunc(table+"/rows/{key:[0-9]+}/select", c.SelectReference).Methods(http.MethodPost)
	api.HandleFunc(table+"/rows/{key:[0-9]+}/edit", c.BeginEdit).Methods(http.MethodPost)
	api.HandleFunc(table+"/rows/{key:[0-9]+}/cancel", c.CancelEdit).Methods(http.MethodPost)
	api.HandleFunc(table+"/rows/{key:[0-9]+}/save", c.Save).Methods(http.MethodPost)

	api.HandleFunc(table+"/submit", c.Submit).Methods(http.MethodPost)
	api.HandleFunc(table+"/reload", c.Reload).Methods(http.MethodPost)
}

func (c *TableAPIController) ListTables(w http.ResponseWriter, r *http.Request) {
	type tablesResponse struct {
		Tables []string `json:"tables"`
	}
	writeJSON(w, http.StatusOK, tablesResponse{Tables: c.tables.Names()})
}

func (c *TableAPIController) GetTable(w http.ResponseWriter, r *http.Request) {
	ctl, ok := c.controller(w, r)
	if !ok {
		return
	}
	c.writeTable(w, http.StatusOK, ctl)
}

func (c *TableAPIController) GetViolations(w http.ResponseWriter, r *http.Request) {
	ctl, ok := c.controller(w, r)
	if !ok {
		return
	}
	mode := fields.ModeSubmit
	switch strings.ToLower(r.URL.Query().Get("mode")) {
	case "", "submit":
	case "save":
		mode = fields.ModeSave
	default:
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_QUERY", "mode must be submit or save")
		return
	}
	writeJSON(w, http.StatusOK, mappers.ViolationsToViewModels(ctl.Validate(mode)))
}

func (c *TableAPIController) ClearNotices(w http.ResponseWriter, r *http.Request) {
	ctl, ok := c.controller(w, r)
	if !ok {
		return
	}
	ctl.ClearNotices()
	c.writeTable(w, http.StatusOK, ctl)
}

func (c *TableAPIController) AddRow(w http.ResponseWriter, r *http.Request) {
	ctl, ok := c.controller(w, r)
	if !ok {
		return
	}
	ctl.Add()
	c.writeTable(w, http.StatusCreated, ctl)
}

// SetFields applies raw cell input. A rejected column leaves the row
// unchanged.
func (c *TableAPIController) SetFields(w http.ResponseWriter, r *http.Request) {
	ctl, key, ok := c.controllerAndKey(w, r)
	if !ok {
		return
	}
	var dto SetFieldsDTO
	if err := decodeBody(r, &dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := ctl.SetFields(key, dto.Fields); err != nil {
		writeTableError(w, r, err)
		return
	}
	c.writeTable(w, http.StatusOK, ctl)
}

func (c *TableAPIController) SelectReference(w http.ResponseWriter, r *http.Request) {
	ctl, key, ok := c.controllerAndKey(w, r)
	if !ok {
		return
	}
	var dto SelectDTO
	if err := decodeBody(r, &dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := ctl.Select(key, dto.Key); err != nil {
		writeTableError(w, r, err)
		return
	}
	c.writeTable(w, http.StatusOK, ctl)
}

// DiscardRow drops an unsaved row locally without contacting the backend.
func (c *TableAPIController) DiscardRow(w http.ResponseWriter, r *http.Request) {
	ctl, key, ok := c.controllerAndKey(w, r)
	if !ok {
		return
	}
	if err := ctl.Remove(key); err != nil {
		writeTableError(w, r, err)
		return
	}
	c.writeTable(w, http.StatusOK, ctl)
}

func (c *TableAPIController) DeleteRow(w http.ResponseWriter, r *http.Request) {
	ctl, key, ok := c.controllerAndKey(w, r)
	if !ok {
		return
	}
	if err := ctl.Delete(r.Context(), key); err != nil {
		writeTableError(w, r, err)
		return
	}
	c.writeTable(w, http.StatusOK, ctl)
}

func (c *TableAPIController) BeginEdit(w http.ResponseWriter, r *http.Request) {
	ctl, key, ok := c.controllerAndKey(w, r)
	if !ok {
		return
	}
	if err := ctl.BeginEdit(key); err != nil {
		writeTableError(w, r, err)
		return
	}
	c.writeTable(w, http.StatusOK, ctl)
}

func (c *TableAPIController) CancelEdit(w http.ResponseWriter, r *http.Request) {
	ctl, key, ok := c.controllerAndKey(w, r)
	if !ok {
		return
	}
	if err := ctl.CancelEdit(key); err != nil {
		writeTableError(w, r, err)
		return
	}
	c.writeTable(w, http.StatusOK, ctl)
}

func (c *TableAPIController) Save(w http.ResponseWriter, r *http.Request) {
	ctl, key, ok := c.controllerAndKey(w, r)
	if !ok {
		return
	}
	if err := ctl.Save(r.Context(), key); err != nil {
		writeTableError(w, r, err)
		return
	}
	c.writeTable(w, http.StatusOK, ctl)
}

func (c *TableAPIController) Submit(w http.ResponseWriter, r *http.Request) {
	ctl, ok := c.controller(w, r)
	if !ok {
		return
	}
	if err := ctl.Submit(r.Context()); err != nil {
		writeTableError(w, r, err)
		return
	}
	c.writeTable(w, http.StatusOK, ctl)
}

func (c *TableAPIController) Reload(w http.ResponseWriter, r *http.Request) {
	ctl, ok := c.controller(w, r)
	if !ok {
		return
	}
	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = r.PostFormValue("filter")
	}
	if err := ctl.Reload(r.Context(), filter); err != nil {
		writeTableError(w, r, err)
		return
	}
	c.writeTable(w, http.StatusOK, ctl)
}

func (c *TableAPIController) controller(w http.ResponseWriter, r *http.Request) (*tablectl.Controller, bool) {
	ctl, err := c.tables.Get(mux.Vars(r)["table"])
	if err != nil {
		writeTableError(w, r, err)
		return nil, false
	}
	return ctl, true
}

func (c *TableAPIController) controllerAndKey(w http.ResponseWriter, r *http.Request) (*tablectl.Controller, int, bool) {
	ctl, ok := c.controller(w, r)
	if !ok {
		return nil, 0, false
	}
	key, err := strconv.Atoi(mux.Vars(r)["key"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_ROW_KEY", "row key must be an integer")
		return nil, 0, false
	}
	return ctl, key, true
}

func (c *TableAPIController) writeTable(w http.ResponseWriter, status int, ctl *tablectl.Controller) {
	writeJSON(w, status, mappers.SnapshotToTable(ctl.Schema(), ctl.Snapshot()))
}
