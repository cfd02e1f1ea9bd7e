package controllers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/irrigodev/irrigationdesign/modules/plans/presentation/controllers/dtos"
	"github.com/irrigodev/irrigationdesign/modules/plans/services"
	"github.com/irrigodev/irrigationdesign/pkg/application"
	"github.com/irrigodev/irrigationdesign/pkg/composables"
	"github.com/irrigodev/irrigationdesign/pkg/httpapi"
)

type PlansController struct {
	plans       *services.PlanService
	sync        *services.SyncService
	authMW      mux.MiddlewareFunc
	pageSize    int
	maxPageSize int
}

func NewPlansController(
	plans *services.PlanService,
	sync *services.SyncService,
	authMW mux.MiddlewareFunc,
	pageSize, maxPageSize int,
) application.Controller {
	return &PlansController{
		plans:       plans,
		sync:        sync,
		authMW:      authMW,
		pageSize:    pageSize,
		maxPageSize: maxPageSize,
	}
}

func (c *PlansController) Key() string {
	return "/api/plans"
}

func (c *PlansController) Register(r *mux.Router) {
	s := r.PathPrefix("/api/plans").Subrouter()
	s.Use(c.authMW)
	s.HandleFunc("", c.list).Methods(http.MethodGet)
	s.HandleFunc("", c.create).Methods(http.MethodPost)
	s.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
	s.HandleFunc("/{id}", c.update).Methods(http.MethodPatch)
	s.HandleFunc("/{id}", c.delete).Methods(http.MethodDelete)
	s.HandleFunc("/{id}/elements", c.synchronize).Methods(http.MethodPost)
}

func (c *PlansController) pagination(r *http.Request) (limit, offset int) {
	limit = c.pageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, c.maxPageSize)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	return id, err == nil
}

func parseUUIDQuery(r *http.Request, name string) *uuid.UUID {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func (c *PlansController) list(w http.ResponseWriter, r *http.Request) {
	caller, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	limit, offset := c.pagination(r)
	plans, total, err := c.plans.List(r.Context(), caller, services.ListPlansParams{
		FactoryID: parseUUIDQuery(r, "factory"),
		DealerID:  parseUUIDQuery(r, "dealer"),
		GrowerID:  parseUUIDQuery(r, "grower"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	items := make([]dtos.PlanResponse, 0, len(plans))
	for _, p := range plans {
		items = append(items, dtos.ToPlanResponse(p))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.ListResponse[dtos.PlanResponse]{Items: items, Total: total})
}

func (c *PlansController) get(w http.ResponseWriter, r *http.Request) {
	caller, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	id, ok := parseUUIDParam(r, "id")
	if !ok {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "plan not found")
		return
	}
	snap, err := c.plans.Snapshot(r.Context(), caller, id)
	if err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.ToSnapshotResponse(snap))
}

func (c *PlansController) create(w http.ResponseWriter, r *http.Request) {
	caller, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	var req dtos.CreatePlanRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body")
		return
	}
	draft, err := req.ToDraft()
	if err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	created, err := c.plans.Create(r.Context(), caller, draft)
	if err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, dtos.ToPlanResponse(created))
}

func (c *PlansController) update(w http.ResponseWriter, r *http.Request) {
	caller, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	id, ok := parseUUIDParam(r, "id")
	if !ok {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "plan not found")
		return
	}
	var req dtos.UpdatePlanRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body")
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	updated, err := c.plans.Update(r.Context(), caller, id, patch)
	if err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.ToPlanResponse(updated))
}

func (c *PlansController) delete(w http.ResponseWriter, r *http.Request) {
	caller, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	id, ok := parseUUIDParam(r, "id")
	if !ok {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "plan not found")
		return
	}
	if err := c.plans.Delete(r.Context(), caller, id); err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *PlansController) synchronize(w http.ResponseWriter, r *http.Request) {
	caller, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	id, ok := parseUUIDParam(r, "id")
	if !ok {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "plan not found")
		return
	}
	var req dtos.SyncRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body")
		return
	}
	batch, err := req.ToBatch()
	if err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	snap, err := c.sync.Synchronize(r.Context(), caller, id, batch)
	if err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.ToSnapshotResponse(snap))
}
