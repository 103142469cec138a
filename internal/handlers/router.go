package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/salehouse/tour3d/internal/buildinfo"
	"github.com/salehouse/tour3d/internal/config"
	"github.com/salehouse/tour3d/internal/database"
	"github.com/salehouse/tour3d/internal/middleware"
	"github.com/salehouse/tour3d/internal/storage"
	ws "github.com/salehouse/tour3d/internal/websocket"
)

// Router wraps the mux router and the service dependencies
type Router struct {
	*mux.Router
	db    *database.DB
	store *storage.Store
	hub   *ws.Hub
	cfg   *config.Config

	chain http.Handler
}

// ServeHTTP runs the middleware chain in front of route matching so
// case folding applies before mux looks the path up.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.chain.ServeHTTP(w, req)
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, store *storage.Store, hub *ws.Hub, cfg *config.Config) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		db:     db,
		store:  store,
		hub:    hub,
		cfg:    cfg,
	}

	r.chain = middleware.CaseInsensitiveMiddleware(middleware.CORS(r.Router))

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Plan authoring routes (setting page)
	setting := r.PathPrefix("/api/v1/setting-page").Subrouter()
	setting.HandleFunc("/plan/add", r.addPlan).Methods("POST")
	setting.HandleFunc("/plan/list", r.listPlans).Methods("GET")
	setting.HandleFunc("/plan-item/add", r.addPlanItem).Methods("POST")
	setting.HandleFunc("/plan-item/list", r.listPlanItems).Methods("GET")
	setting.HandleFunc("/plan-item/get", r.getPlanItem).Methods("GET")
	setting.HandleFunc("/plan-item/update", r.updatePlanItem).Methods("POST")
	setting.HandleFunc("/plan-item/delete", r.deletePlanItem).Methods("POST", "DELETE")

	// Building view routes
	r.HandleFunc("/api/v1/object/add", r.addObject).Methods("POST")
	r.HandleFunc("/api/v1/object/block-homes", r.blockHomes).Methods("GET")
	r.HandleFunc("/api/v1/block/add", r.addBlock).Methods("POST")
	r.HandleFunc("/api/v1/home/add", r.addHome).Methods("POST")
	r.HandleFunc("/api/v1/home/get", r.getHome).Methods("GET")
	r.HandleFunc("/api/v1/building/grid", r.buildingGrid).Methods("GET")
	r.HandleFunc("/api/v1/building/report", r.buildingReport).Methods("GET")

	// Tour viewer routes
	r.HandleFunc("/api/v1/tour/rooms", r.tourRooms).Methods("GET")
	r.HandleFunc("/api/v1/tour/qr", r.tourQR).Methods("GET")
	r.HandleFunc("/ws/tour/{session}", r.tourSocket)

	// Stored textures
	r.PathPrefix("/storage/").Handler(
		http.StripPrefix("/storage/", http.FileServer(http.Dir(store.Root()))))

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"server":  "tour3d",
		"commit":  buildinfo.CommitHash,
		"started": buildinfo.StartTime,
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
