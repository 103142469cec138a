package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"

	"github.com/salehouse/tour3d/internal/models"
	"github.com/salehouse/tour3d/internal/tour/graph"
	ws "github.com/salehouse/tour3d/internal/websocket"
)

// tourRooms returns every room of a plan with resolved texture URLs plus
// the room the viewer should open on. An unknown deep-link id falls back
// to the first room.
func (r *Router) tourRooms(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	planID, err := strconv.ParseInt(q.Get("plan_id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "plan_id is required")
		return
	}

	var items []models.PlanItem
	if err := r.db.Where("plan_id = ?", planID).Order("id").Find(&items).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch rooms")
		return
	}
	if len(items) == 0 {
		respondError(w, http.StatusNotFound, "Plan has no rooms")
		return
	}

	rooms := make([]graph.Room, len(items))
	payload := make([]map[string]interface{}, len(items))
	for i, item := range items {
		rooms[i] = item.Room()
		payload[i] = r.itemPayload(item)
	}

	var deepLink *int64
	if raw := q.Get("room"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			deepLink = &id
		}
	}
	g := graph.New(rooms)
	start := rooms[g.StartIndex(deepLink)].ID

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rooms":         payload,
		"start_room_id": start,
	})
}

// tourQR renders a share code pointing a phone at the tour viewer
func (r *Router) tourQR(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	link, err := url.Parse(r.cfg.Tour.ViewerBaseURL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Viewer URL misconfigured")
		return
	}
	params := link.Query()
	params.Set("tour", "true")
	for _, key := range []string{"home_id", "plan_id", "room"} {
		if v := q.Get(key); v != "" {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("%s must be numeric", key))
				return
			}
			params.Set(key, v)
		}
	}
	link.RawQuery = params.Encode()

	png, err := qrcode.Encode(link.String(), qrcode.Medium, 512)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to encode QR")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// tourSocket joins a viewer to a shared tour session. NAVIGATE messages
// from any viewer are mirrored to everyone in the session.
func (r *Router) tourSocket(w http.ResponseWriter, req *http.Request) {
	session := mux.Vars(req)["session"]
	if session == "" {
		respondError(w, http.StatusUnprocessableEntity, "session is required")
		return
	}
	ws.ServeWs(r.hub, session, func(session string, roomID int64) {
		r.hub.Broadcast(session, ws.NavigateMessage{Type: "NAVIGATE", RoomID: roomID})
	}, w, req)
}

// AttachNavigator mirrors a navigator's state events into a session, for
// embeddings that drive the tour server-side (kiosk or guided viewing).
func (r *Router) AttachNavigator(session string, nav *graph.Navigator) {
	nav.OnEvent(func(ev graph.Event) {
		r.hub.Broadcast(session, ev)
	})
}
