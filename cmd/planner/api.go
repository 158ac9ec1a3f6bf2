package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"plotcraft.ai/internal/catalog"
	"plotcraft.ai/internal/persistence/indexdb"
	"plotcraft.ai/internal/plan/intent"
	"plotcraft.ai/internal/plan/model"
	"plotcraft.ai/internal/protocol"
	"plotcraft.ai/internal/site"
	"plotcraft.ai/internal/transport/ws"
)

const maxBody = 8 << 20

type api struct {
	mgr *site.Manager
	idx *indexdb.SQLiteIndex
	cat *catalog.Catalog
	ws  *ws.Server
	log *log.Logger
}

func newAPI(mgr *site.Manager, idx *indexdb.SQLiteIndex, cat *catalog.Catalog, logger *log.Logger) *api {
	return &api{mgr: mgr, idx: idx, cat: cat, ws: ws.NewServer(logger), log: logger}
}

func (a *api) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/metrics", a.metrics).Methods(http.MethodGet)
	r.HandleFunc("/v1/catalog", a.listCatalog).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1/plans").Subrouter()
	v1.HandleFunc("", a.createPlan).Methods(http.MethodPost)
	v1.HandleFunc("/{id}", a.getPlan).Methods(http.MethodGet)
	v1.HandleFunc("/{id}/layout", a.getLayout).Methods(http.MethodGet)
	v1.HandleFunc("/{id}/layout", a.importLayout).Methods(http.MethodPost)
	v1.HandleFunc("/{id}/intents", a.applyIntents).Methods(http.MethodPost)
	v1.HandleFunc("/{id}/drop", a.drop).Methods(http.MethodPost)
	v1.HandleFunc("/{id}/setback", a.setback).Methods(http.MethodGet)
	v1.HandleFunc("/{id}/overlaps", a.overlaps).Methods(http.MethodGet)
	v1.HandleFunc("/{id}/checkpoints", a.checkpoints).Methods(http.MethodGet)
	v1.HandleFunc("/{id}/ws", a.connect).Methods(http.MethodGet)
	return r
}

func (a *api) site(rw http.ResponseWriter, r *http.Request) (*site.Site, bool) {
	s, err := a.mgr.Get(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, site.ErrPlanNotFound) {
			writeError(rw, http.StatusNotFound, protocol.ErrPlanNotFound, "plan not found")
		} else {
			a.log.Printf("resume plan %s: %v", mux.Vars(r)["id"], err)
			writeError(rw, http.StatusInternalServerError, protocol.ErrInternal, err.Error())
		}
		return nil, false
	}
	return s, true
}

func (a *api) createPlan(rw http.ResponseWriter, r *http.Request) {
	s, err := a.mgr.Create()
	if err != nil {
		writeError(rw, http.StatusInternalServerError, protocol.ErrInternal, err.Error())
		return
	}
	sum, err := s.Summary(r.Context())
	if err != nil {
		writeError(rw, http.StatusServiceUnavailable, protocol.ErrPlanBusy, err.Error())
		return
	}
	writeJSON(rw, http.StatusCreated, sum)
}

func (a *api) getPlan(rw http.ResponseWriter, r *http.Request) {
	s, ok := a.site(rw, r)
	if !ok {
		return
	}
	sum, err := s.Summary(r.Context())
	if err != nil {
		writeError(rw, http.StatusServiceUnavailable, protocol.ErrPlanBusy, err.Error())
		return
	}
	writeJSON(rw, http.StatusOK, sum)
}

func (a *api) getLayout(rw http.ResponseWriter, r *http.Request) {
	s, ok := a.site(rw, r)
	if !ok {
		return
	}
	l, err := s.Layout(r.Context())
	if err != nil {
		writeError(rw, http.StatusServiceUnavailable, protocol.ErrPlanBusy, err.Error())
		return
	}
	writeJSON(rw, http.StatusOK, l)
}

func (a *api) importLayout(rw http.ResponseWriter, r *http.Request) {
	s, ok := a.site(rw, r)
	if !ok {
		return
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(rw, http.StatusBadRequest, protocol.ErrProtoBadRequest, err.Error())
		return
	}
	rep, err := s.Import(r.Context(), raw)
	if err != nil {
		writeError(rw, statusFor(err), protocol.CodeFor(err), err.Error())
		return
	}
	writeJSON(rw, http.StatusOK, rep)
}

type intentsRequest struct {
	Intents []intent.Envelope `json:"intents"`
}

func (a *api) applyIntents(rw http.ResponseWriter, r *http.Request) {
	s, ok := a.site(rw, r)
	if !ok {
		return
	}
	var req intentsRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
		writeError(rw, http.StatusBadRequest, protocol.ErrProtoBadRequest, err.Error())
		return
	}
	batch := make([]intent.Intent, 0, len(req.Intents))
	for _, env := range req.Intents {
		in, err := intent.Decode(env)
		if err != nil {
			writeError(rw, http.StatusBadRequest, protocol.ErrBadRequest, err.Error())
			return
		}
		batch = append(batch, in)
	}
	if len(batch) == 0 {
		writeError(rw, http.StatusBadRequest, protocol.ErrBadRequest, "no intents")
		return
	}
	// Catalog drops arrive without a trailing checkpoint.
	if _, ok := batch[len(batch)-1].(intent.Checkpoint); !ok {
		batch = append(batch, intent.Checkpoint{Reason: "api"})
	}
	res, err := s.Apply(r.Context(), batch)
	if err != nil {
		writeError(rw, http.StatusServiceUnavailable, protocol.ErrPlanBusy, err.Error())
		return
	}
	writeJSON(rw, http.StatusOK, res)
}

func (a *api) listCatalog(rw http.ResponseWriter, _ *http.Request) {
	if a.cat == nil {
		writeJSON(rw, http.StatusOK, map[string]any{"items": []catalog.Item{}})
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"digest": a.cat.Digest(), "items": a.cat.Items()})
}

type dropRequest struct {
	Item        string     `json:"item"`
	Position    model.Vec2 `json:"position"`
	RotationDeg float64    `json:"rotation_deg"`
}

// drop places a catalog item. The dispatcher decides whether it fits.
func (a *api) drop(rw http.ResponseWriter, r *http.Request) {
	s, ok := a.site(rw, r)
	if !ok {
		return
	}
	var req dropRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
		writeError(rw, http.StatusBadRequest, protocol.ErrProtoBadRequest, err.Error())
		return
	}
	if a.cat == nil {
		writeError(rw, http.StatusNotFound, protocol.ErrNotFound, "catalog not loaded")
		return
	}
	batch, err := a.cat.Drop(req.Item, req.Position, req.RotationDeg)
	if err != nil {
		writeError(rw, http.StatusNotFound, protocol.ErrNotFound, err.Error())
		return
	}
	res, err := s.Apply(r.Context(), batch)
	if err != nil {
		writeError(rw, http.StatusServiceUnavailable, protocol.ErrPlanBusy, err.Error())
		return
	}
	writeJSON(rw, http.StatusOK, res)
}

func (a *api) setback(rw http.ResponseWriter, r *http.Request) {
	s, ok := a.site(rw, r)
	if !ok {
		return
	}
	distance := -1.0
	if v := r.URL.Query().Get("distance"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil || d < 0 {
			writeError(rw, http.StatusBadRequest, protocol.ErrBadRequest, "distance must be a non-negative number")
			return
		}
		distance = d
	}
	res, err := s.Setback(r.Context(), distance)
	if err != nil {
		writeError(rw, statusFor(err), protocol.CodeFor(err), err.Error())
		return
	}
	writeJSON(rw, http.StatusOK, res)
}

func (a *api) overlaps(rw http.ResponseWriter, r *http.Request) {
	s, ok := a.site(rw, r)
	if !ok {
		return
	}
	res, err := s.Overlaps(r.Context())
	if err != nil {
		writeError(rw, http.StatusServiceUnavailable, protocol.ErrPlanBusy, err.Error())
		return
	}
	writeJSON(rw, http.StatusOK, res)
}

func (a *api) checkpoints(rw http.ResponseWriter, r *http.Request) {
	s, ok := a.site(rw, r)
	if !ok {
		return
	}
	if a.idx == nil {
		writeError(rw, http.StatusNotFound, protocol.ErrNotFound, "index disabled")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	rows, err := a.idx.Checkpoints(s.ID(), limit)
	if err != nil {
		writeError(rw, http.StatusInternalServerError, protocol.ErrInternal, err.Error())
		return
	}
	rejected, err := a.idx.RejectionCounts(s.ID())
	if err != nil {
		writeError(rw, http.StatusInternalServerError, protocol.ErrInternal, err.Error())
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"checkpoints": rows, "rejections": rejected})
}

func (a *api) connect(rw http.ResponseWriter, r *http.Request) {
	s, ok := a.site(rw, r)
	if !ok {
		return
	}
	a.ws.Handler(s)(rw, r)
}

func (a *api) metrics(rw http.ResponseWriter, _ *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

	fmt.Fprintf(rw, "# HELP plotcraft_sites Running plan sites.\n")
	fmt.Fprintf(rw, "# TYPE plotcraft_sites gauge\n")
	fmt.Fprintf(rw, "plotcraft_sites %d\n", a.mgr.Count())

	if a.idx == nil {
		return
	}
	st := a.idx.Stats()
	fmt.Fprintf(rw, "# HELP plotcraft_index_queue_depth Index writer backlog.\n")
	fmt.Fprintf(rw, "# TYPE plotcraft_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "plotcraft_index_queue_depth %d\n", st.QueueDepth)
	fmt.Fprintf(rw, "# HELP plotcraft_index_dropped_total Rows dropped because the index queue was full.\n")
	fmt.Fprintf(rw, "# TYPE plotcraft_index_dropped_total counter\n")
	fmt.Fprintf(rw, "plotcraft_index_dropped_total{table=%q} %d\n", "checkpoints", st.DropCheckpointTotal)
	fmt.Fprintf(rw, "plotcraft_index_dropped_total{table=%q} %d\n", "rejections", st.DropRejectionTotal)
	fmt.Fprintf(rw, "plotcraft_index_dropped_total{table=%q} %d\n", "snapshots", st.DropSnapshotTotal)
}

// statusFor maps a plan-layer error to an HTTP status.
func statusFor(err error) int {
	switch protocol.CodeFor(err) {
	case protocol.ErrBadRequest:
		return http.StatusBadRequest
	case protocol.ErrNotFound:
		return http.StatusNotFound
	case protocol.ErrInternal:
		if errors.Is(err, site.ErrStopped) {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	}
	return http.StatusUnprocessableEntity
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func writeError(rw http.ResponseWriter, status int, code, msg string) {
	writeJSON(rw, status, protocol.NewError(code, msg))
}
