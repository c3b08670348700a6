package webapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/julienschmidt/httprouter"
	lg "github.com/livegraph/livegraph/pkg"
	"github.com/livegraph/livegraph/pkg/conductor"
	"github.com/livegraph/livegraph/pkg/stream"
)

// WebAPI implements conductor.Service
type WebAPI struct {
	svc    *lg.Service
	config lg.Config
}

// interface guard ensures WebAPI implements conductor.Service
var _ conductor.Service = WebAPI{}

func NewWebAPI(config lg.Config, svc *lg.Service) (WebAPI, error) {
	return WebAPI{svc: svc, config: config}, nil
}

func (t WebAPI) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		mux := t.createRouter()

		addr := t.config.WebAPI.Bind + ":" + t.config.WebAPI.Port
		server := &http.Server{Addr: addr, Handler: mux}
		log.Printf("WebAPI: listening on %s", addr)
		go func() {
			if err := server.ListenAndServe(); err != http.ErrServerClosed {
				log.Fatalf("HTTP server ListenAndServe: %v", err)
			}
		}()

		started <- true
		ctx := <-stop
		server.Shutdown(ctx)
		stopped <- true
	}()
	return nil
}

func (t WebAPI) createRouter() *httprouter.Router {
	mux := httprouter.New()

	// GET /graph -> { node: [successors...] } the current adjacency list
	mux.GET("/graph", t.getGraph)

	// DELETE /graph -> { status } replace the graph with an empty one
	mux.DELETE("/graph", t.resetGraph)

	// POST { node } /nodes -> { status, node } add a node
	mux.POST("/nodes", t.addNode)

	// POST { from_node, to_node } /edges -> { status, from, to } add a directed edge
	mux.POST("/edges", t.addEdge)

	// GET /ws -> websocket: graph_init, then every event as it happens
	mux.Handler("GET", "/ws", stream.NewHandler(t.svc))

	// GET /health -> { nodes, subscribers, seq }
	mux.GET("/health", t.health)

	return mux
}

func (t WebAPI) getGraph(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	sendResponse(w, t.svc.Graph())
}

type ResetResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (t WebAPI) resetGraph(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	err := t.svc.Reset(r.Context())
	if err != nil {
		sendError(w, "Reset", err)
		return
	}
	sendResponse(w, ResetResponse{Status: "ok", Message: "graph reset"})
}

type AddNodeRequest struct {
	Node json.RawMessage `json:"node"`
}

type AddNodeResponse struct {
	Status string    `json:"status"`
	Node   lg.NodeID `json:"node"`
}

func (t WebAPI) addNode(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var o AddNodeRequest
	err := json.NewDecoder(r.Body).Decode(&o)
	if err != nil {
		sendBadRequest(w, "bad request body (expecting JSON)")
		return
	}
	node, err := lg.ParseNodeID(o.Node)
	if err != nil {
		sendError(w, "node", err)
		return
	}
	err = t.svc.AddNode(r.Context(), node)
	if err != nil {
		sendError(w, "AddNode", err)
		return
	}
	sendResponse(w, AddNodeResponse{Status: "ok", Node: node})
}

type AddEdgeRequest struct {
	From json.RawMessage `json:"from_node"`
	To   json.RawMessage `json:"to_node"`
}

type AddEdgeResponse struct {
	Status string    `json:"status"`
	From   lg.NodeID `json:"from"`
	To     lg.NodeID `json:"to"`
}

func (t WebAPI) addEdge(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var o AddEdgeRequest
	err := json.NewDecoder(r.Body).Decode(&o)
	if err != nil {
		sendBadRequest(w, "bad request body (expecting JSON)")
		return
	}
	from, err := lg.ParseNodeID(o.From)
	if err != nil {
		sendError(w, "from_node", err)
		return
	}
	to, err := lg.ParseNodeID(o.To)
	if err != nil {
		sendError(w, "to_node", err)
		return
	}
	err = t.svc.AddEdge(r.Context(), from, to)
	if err != nil {
		sendError(w, "AddEdge", err)
		return
	}
	sendResponse(w, AddEdgeResponse{Status: "ok", From: from, To: to})
}

func (t WebAPI) health(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	sendResponse(w, t.svc.Stats())
}
