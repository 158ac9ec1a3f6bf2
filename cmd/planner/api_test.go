package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plotcraft.ai/internal/catalog"
	"plotcraft.ai/internal/persistence/indexdb"
	"plotcraft.ai/internal/plan/intent"
	"plotcraft.ai/internal/plan/model"
	"plotcraft.ai/internal/protocol"
	"plotcraft.ai/internal/site"
	"plotcraft.ai/internal/tuning"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	idx, err := indexdb.OpenSQLite(filepath.Join(dir, "index", "plans.sqlite"))
	require.NoError(t, err)
	logger := log.New(io.Discard, "", 0)
	mgr := site.NewManager(context.Background(), site.ManagerConfig{DataDir: dir, Tuning: tuning.Defaults(), Index: idx, Logger: logger})
	cat, err := catalog.Load(filepath.Join("..", "..", "configs", "catalog"))
	require.NoError(t, err)
	srv := httptest.NewServer(newAPI(mgr, idx, cat, logger).Router())
	t.Cleanup(func() {
		srv.Close()
		mgr.Close()
		_ = idx.Close()
	})
	return srv
}

func do(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func encode(t *testing.T, in ...intent.Intent) intentsRequest {
	t.Helper()
	envs, err := intent.EncodeAll(in)
	require.NoError(t, err)
	return intentsRequest{Intents: envs}
}

func TestPlanLifecycle(t *testing.T) {
	srv := newTestServer(t)

	var sum site.Summary
	require.Equal(t, http.StatusCreated, do(t, http.MethodPost, srv.URL+"/v1/plans", nil, &sum))
	require.NotEmpty(t, sum.PlanID)
	base := srv.URL + "/v1/plans/" + sum.PlanID

	doc := `{"walls": [{"start": {"x":0,"z":0}, "end": {"x":8,"z":0}}], "boundary": {"points": [{"x":-5,"z":-5},{"x":15,"z":-5},{"x":15,"z":15},{"x":-5,"z":15}], "setback": 2}}`
	var rep map[string]any
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/layout", doc, &rep))
	assert.Equal(t, true, rep["boundary"])

	var sb site.SetbackResult
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base+"/setback", nil, &sb))
	assert.Equal(t, 2.0, sb.Distance)
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base+"/setback?distance=1", nil, &sb))
	assert.Equal(t, 1.0, sb.Distance)
	assert.InDelta(t, -4, sb.Inner[0].X, 1e-9)

	var out intent.Outcome
	req := encode(t,
		intent.AddObject{Object: model.PlacedObject{Kind: "car", Position: model.Vec2{X: 3, Z: 5}, Width: 2, Length: 4}},
		intent.AddObject{Object: model.PlacedObject{Kind: "car", Position: model.Vec2{X: 4, Z: 5}, Width: 2, Length: 4}},
	)
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/intents", req, &out))
	assert.Len(t, out.Applied, 2)
	assert.Equal(t, 1, out.Checkpoints)

	var ov site.OverlapResult
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base+"/overlaps", nil, &ov))
	assert.Len(t, ov.Pairs, 1)

	var l model.Layout
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base+"/layout", nil, &l))
	assert.Len(t, l.Walls, 1)
	assert.Len(t, l.Objects, 2)

	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base, nil, &sum))
	assert.Equal(t, 2, sum.Stats.Objects)
	assert.Equal(t, http.StatusOK, do(t, http.MethodGet, base+"/checkpoints", nil, nil))
}

func TestPlanErrors(t *testing.T) {
	srv := newTestServer(t)

	var e protocol.ErrorMsg
	require.Equal(t, http.StatusNotFound, do(t, http.MethodGet, srv.URL+"/v1/plans/"+uuid.NewString(), nil, &e))
	assert.Equal(t, protocol.ErrPlanNotFound, e.Code)

	var sum site.Summary
	require.Equal(t, http.StatusCreated, do(t, http.MethodPost, srv.URL+"/v1/plans", nil, &sum))
	base := srv.URL + "/v1/plans/" + sum.PlanID

	require.Equal(t, http.StatusBadRequest, do(t, http.MethodPost, base+"/layout", `{"walls": [{"start": {"x": 0}}]}`, &e))
	assert.Equal(t, protocol.ErrBadRequest, e.Code)

	// No boundary yet.
	require.Equal(t, http.StatusUnprocessableEntity, do(t, http.MethodGet, base+"/setback?distance=1", nil, &e))
	assert.Equal(t, protocol.ErrInvalidGeometry, e.Code)
	require.Equal(t, http.StatusBadRequest, do(t, http.MethodGet, base+"/setback?distance=-3", nil, &e))

	require.Equal(t, http.StatusBadRequest, do(t, http.MethodPost, base+"/intents", `{"intents": [{"type": "FLY"}]}`, &e))
	require.Equal(t, http.StatusBadRequest, do(t, http.MethodPost, base+"/intents", `{"intents": []}`, &e))

	var out intent.Outcome
	req := encode(t, intent.AddObject{Object: model.PlacedObject{Kind: "car", Width: 0, Length: 4}})
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/intents", req, &out))
	require.Len(t, out.Rejected, 1)
	assert.Equal(t, protocol.ErrInvalidGeometry, out.Rejected[0].Code)
}

func TestCatalogDrop(t *testing.T) {
	srv := newTestServer(t)

	var listing struct {
		Digest string         `json:"digest"`
		Items  []catalog.Item `json:"items"`
	}
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/v1/catalog", nil, &listing))
	assert.NotEmpty(t, listing.Digest)
	assert.NotEmpty(t, listing.Items)

	var sum site.Summary
	require.Equal(t, http.StatusCreated, do(t, http.MethodPost, srv.URL+"/v1/plans", nil, &sum))
	base := srv.URL + "/v1/plans/" + sum.PlanID

	var out intent.Outcome
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/drop", dropRequest{Item: "shed", Position: model.Vec2{X: 4, Z: 4}}, &out))
	require.Len(t, out.Applied, 1)
	assert.Equal(t, intent.NameAddBuilding, out.Applied[0].Type)

	var e protocol.ErrorMsg
	require.Equal(t, http.StatusNotFound, do(t, http.MethodPost, base+"/drop", dropRequest{Item: "rocket"}, &e))
	assert.Equal(t, protocol.ErrNotFound, e.Code)
}
