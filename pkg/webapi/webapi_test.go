package webapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/julienschmidt/httprouter"
	lg "github.com/livegraph/livegraph/pkg"
	"github.com/livegraph/livegraph/pkg/stream"
)

func TestWebAPI(t *testing.T) {
	mux, _ := newTestRig(t)

	// Add node "A"
	var node map[string]any
	request(t, mux, "POST", "/nodes", `{"node":"A"}`, &node)
	if diff := cmp.Diff(map[string]any{"status": "ok", "node": "A"}, node); diff != "" {
		t.Fatalf("Add Node response (-want +got):\n%s", diff)
	}

	// Add edge A -> 1 twice, numeric identity
	var edge map[string]any
	request(t, mux, "POST", "/edges", `{"from_node":"A","to_node":1}`, &edge)
	request(t, mux, "POST", "/edges", `{"from_node":"A","to_node":1.0}`, &edge)
	if diff := cmp.Diff(map[string]any{"status": "ok", "from": "A", "to": float64(1)}, edge); diff != "" {
		t.Fatalf("Add Edge response (-want +got):\n%s", diff)
	}

	// Self loop
	request(t, mux, "POST", "/edges", `{"from_node":"B","to_node":"B"}`, &edge)

	// Get Graph
	var graph map[string][]any
	request(t, mux, "GET", "/graph", "", &graph)
	want := map[string][]any{
		"A": {float64(1), float64(1)},
		"1": {},
		"B": {"B"},
	}
	if diff := cmp.Diff(want, graph); diff != "" {
		t.Fatalf("Get Graph (-want +got):\n%s", diff)
	}

	// Health
	var stats lg.Stats
	request(t, mux, "GET", "/health", "", &stats)
	if stats.Nodes != 3 || stats.Seq != 4 {
		t.Fatalf("Health: unexpected stats %+v", stats)
	}

	// Reset
	var reset ResetResponse
	request(t, mux, "DELETE", "/graph", "", &reset)
	if reset.Status != "ok" || reset.Message != "graph reset" {
		t.Fatalf("Reset: unexpected response %+v", reset)
	}
	var after map[string][]any
	request(t, mux, "GET", "/graph", "", &after)
	if len(after) != 0 {
		t.Fatalf("Get Graph after reset: %v", after)
	}
}

func TestWebAPIRejectsBadNodes(t *testing.T) {
	mux, svc := newTestRig(t)

	bad := []struct {
		path, body, code string
	}{
		{"/nodes", `{"node":["A"]}`, string(lg.InvalidNode)},
		{"/nodes", `{"node":{"k":1}}`, string(lg.InvalidNode)},
		{"/nodes", `{"node":null}`, string(lg.InvalidNode)},
		{"/nodes", `{}`, string(lg.InvalidNode)},
		{"/nodes", `not json`, string(lg.BadRequest)},
		{"/edges", `{"from_node":[],"to_node":"A"}`, string(lg.InvalidNode)},
		{"/edges", `{"from_node":"A","to_node":{}}`, string(lg.InvalidNode)},
		{"/edges", `{"from_node":"A"}`, string(lg.InvalidNode)},
	}
	for _, tc := range bad {
		req := httptest.NewRequest("POST", tc.path, strings.NewReader(tc.body))
		res := httptest.NewRecorder()
		mux.ServeHTTP(res, req)
		if res.Code != http.StatusBadRequest {
			t.Fatalf("%s %s: expected 400, got %d", tc.path, tc.body, res.Code)
		}
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
			t.Fatalf("%s %s: bad error json: %v", tc.path, tc.body, err)
		}
		if body.Error.Code != tc.code {
			t.Fatalf("%s %s: expected code %s, got %s", tc.path, tc.body, tc.code, body.Error.Code)
		}
	}
	if len(svc.Graph()) != 0 {
		t.Fatalf("rejected requests changed the graph: %v", svc.Graph())
	}
}

func TestWebAPIStream(t *testing.T) {
	mux, _ := newTestRig(t)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := stream.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.CloseNow()
	if e, err := c.Next(ctx); err != nil || e.Event != lg.GraphInit {
		t.Fatalf("expected graph_init, got %v %v", e, err)
	}

	res, err := http.Post(srv.URL+"/edges", "application/json", strings.NewReader(`{"from_node":"X","to_node":"Y"}`))
	if err != nil {
		t.Fatalf("POST /edges: %v", err)
	}
	res.Body.Close()

	e, err := c.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	want := stream.WireEvent{Event: lg.EdgeAdded, Seq: 1, From: "X", To: "Y"}
	if diff := cmp.Diff(want, e); diff != "" {
		t.Fatalf("edge event (-want +got):\n%s", diff)
	}
}

// Helpers.

func request(t *testing.T, mux *httprouter.Router, method string, path string, body string, out any) *http.Response {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	res := httptest.NewRecorder()
	mux.ServeHTTP(res, req)
	result := res.Result()
	if result.StatusCode != 200 {
		t.Fatalf("%s %s request failed: %v %v", method, path, result.StatusCode, res.Body)
	}
	err := json.NewDecoder(res.Body).Decode(out)
	if err != nil {
		t.Fatalf("%s %s bad json: %v", method, path, res.Body)
	}
	return result
}

func newTestRig(t *testing.T) (*httprouter.Router, *lg.Service) {
	config := lg.TestConfig()
	svc := lg.NewServiceFromConfig(config)
	web, err := NewWebAPI(config, svc)
	if err != nil {
		t.Fatalf("NewWebAPI: %v", err)
	}
	return web.createRouter(), svc
}
