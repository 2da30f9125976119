// Package httpfilter is an example HTTP adapter around a squiggly
// Engine: a POST handler applies a filter named by a query parameter to
// a JSON request body, and a websocket handler pushes filtered
// documents to a subscriber as a source produces them. Routed with
// julienschmidt/httprouter, matching the pack's preference for a
// lightweight tree router over net/http's own mux.
package httpfilter

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/squigglygo/squiggly/adapter/stdjson"
	"github.com/squigglygo/squiggly/engine"
	"github.com/squigglygo/squiggly/types"
)

// Handler wires an engine.Engine into an httprouter.Router.
type Handler struct {
	engine   *engine.Engine
	logger   types.Logger
	upgrader websocket.Upgrader
}

// New returns a Handler bound to eng.
func New(eng *engine.Engine, logger types.Logger) *Handler {
	return &Handler{
		engine: eng,
		logger: types.NewLogger(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Register mounts the adapter's routes on r: POST /filter for a
// one-shot request/response filter, GET /stream for the websocket
// streaming endpoint.
func (h *Handler) Register(r *httprouter.Router) {
	r.POST("/filter", h.handleFilter)
	r.GET("/stream", h.handleStream)
}

// handleFilter reads a JSON document from the request body, applies
// the filter named by the "filter" query parameter, and writes the
// projected document back as the response body.
func (h *Handler) handleFilter(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	filterText := req.URL.Query().Get("filter")
	if filterText == "" {
		http.Error(w, "missing filter query parameter", http.StatusBadRequest)
		return
	}

	var doc any
	if err := json.NewDecoder(req.Body).Decode(&doc); err != nil {
		http.Error(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}

	out, err := engine.Apply[any](req.Context(), h.engine, stdjson.New(doc), filterText)
	if err != nil {
		if types.IsSyntaxError(err) {
			http.Error(w, "invalid filter: "+err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out.Value()); err != nil {
		h.logger.Printf("httpfilter: writing response: %v", err)
	}
}

// StreamMessage is the wire shape for one message on the /stream
// websocket: a document paired with the filter to apply to it.
type StreamMessage struct {
	Filter   string `json:"filter"`
	Document any    `json:"document"`
}

// handleStream upgrades the request to a websocket and, for each
// incoming StreamMessage, replies with its filtered document. The
// connection stays open until the client disconnects or sends a
// message the server can't decode.
func (h *Handler) handleStream(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Printf("httpfilter: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := req.Context()
	for {
		var msg StreamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		out, err := h.applyStream(ctx, msg)
		if err != nil {
			if writeErr := conn.WriteJSON(map[string]string{"error": err.Error()}); writeErr != nil {
				return
			}
			continue
		}
		if err := conn.WriteJSON(out); err != nil {
			return
		}
	}
}

func (h *Handler) applyStream(ctx context.Context, msg StreamMessage) (any, error) {
	out, err := engine.Apply[any](ctx, h.engine, stdjson.New(msg.Document), msg.Filter)
	if err != nil {
		return nil, err
	}
	return out.Value(), nil
}
