package graph

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/salehouse/tour3d/internal/tour/texture"
)

// State is the navigation phase of the viewer.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateTransitioning
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateTransitioning:
		return "transitioning"
	default:
		return "idle"
	}
}

// MarshalJSON emits the state name so broadcast payloads carry "idle",
// "loading" or "transitioning" instead of a bare number.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// DefaultTransition is the minimum visual transition between rooms. The
// transition timer is fixed-duration on purpose: a fast texture load still
// shows a full transition instead of flashing.
const DefaultTransition = 250 * time.Millisecond

// Event is emitted on every state change.
type Event struct {
	State    State  `json:"state"`
	RoomID   int64  `json:"roomId"`
	RoomName string `json:"roomName"`
}

// Loader loads a room's cubemap in the background. *texture.Loader satisfies it.
type Loader interface {
	LoadAsync(ctx context.Context, roomID int64, roomName string, refs [6]string) <-chan texture.Result
}

// Navigator owns the active room. It is the sole writer of renderer state:
// all room switches, including hotspot activations, funnel through it, and
// exactly one room is authoritative at any time.
type Navigator struct {
	graph      *Graph
	loader     Loader
	transition time.Duration

	mu      sync.Mutex
	current int
	state   State
	active  *texture.Cubemap
	gen     int  // load generation; only the latest swaps in
	pending *int // coalesced navigation request, latest wins

	listeners []func(Event)
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithTransition overrides the minimum transition duration.
func WithTransition(d time.Duration) Option {
	return func(n *Navigator) { n.transition = d }
}

// WithStartRoom deep-links the starting room by id, falling back to the
// first room when the id is unknown.
func WithStartRoom(id int64) Option {
	return func(n *Navigator) { n.current = n.graph.StartIndex(&id) }
}

// NewNavigator creates a navigator positioned at the first room (or the
// deep-linked one). The initial room is not loaded until Start is called.
func NewNavigator(g *Graph, loader Loader, opts ...Option) *Navigator {
	n := &Navigator{
		graph:      g,
		loader:     loader,
		transition: DefaultTransition,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// OnEvent registers a state-change listener. Listeners are invoked outside
// the navigator lock and must not call back into the navigator synchronously.
func (n *Navigator) OnEvent(fn func(Event)) {
	n.mu.Lock()
	n.listeners = append(n.listeners, fn)
	n.mu.Unlock()
}

// Start loads the initial room.
func (n *Navigator) Start(ctx context.Context) {
	n.mu.Lock()
	idx := n.current
	n.mu.Unlock()
	n.beginLoad(ctx, idx)
}

// CurrentRoom returns the authoritative active room.
func (n *Navigator) CurrentRoom() Room {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.graph.Room(n.current)
}

// State returns the current navigation phase.
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// ActiveCubemap returns the cubemap of the active room, or nil while the
// first load is in flight.
func (n *Navigator) ActiveCubemap() *texture.Cubemap {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}

// VisibleHotspots returns the hotspots that may be rendered right now.
// Hotspots never render before the room's geometry is ready.
func (n *Navigator) VisibleHotspots() []Hotspot {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != StateIdle || n.active == nil {
		return nil
	}
	return n.graph.Room(n.current).Hotspots
}

// ActivateHotspot follows a hotspot edge. A nil target is informational and
// does nothing; an unknown target is silently ignored.
func (n *Navigator) ActivateHotspot(ctx context.Context, h Hotspot) {
	if h.TargetRoom == nil {
		return
	}
	n.GoToRoom(ctx, *h.TargetRoom)
}

// GoToRoom switches the active room by id. Unknown ids are a no-op and
// leave the current room untouched. A request arriving while a switch is in
// flight is coalesced: the latest request wins once the in-flight
// transition completes.
func (n *Navigator) GoToRoom(ctx context.Context, id int64) {
	idx, ok := n.graph.IndexOf(id)
	if !ok {
		log.Printf("🚪 navigator: unknown room %d, staying put", id)
		return
	}

	n.mu.Lock()
	if n.state != StateIdle {
		n.pending = &idx
		n.mu.Unlock()
		return
	}
	n.mu.Unlock()

	n.beginLoad(ctx, idx)
}

func (n *Navigator) beginLoad(ctx context.Context, idx int) {
	room := n.graph.Room(idx)
	if !room.Ready() {
		log.Printf("🚪 navigator: room %d (%s) has unresolved faces, not renderable", room.ID, room.Name)
		return
	}

	n.mu.Lock()
	n.state = StateLoading
	n.gen++
	gen := n.gen
	n.mu.Unlock()
	n.emit(Event{State: StateLoading, RoomID: room.ID, RoomName: room.Name})

	results := n.loader.LoadAsync(ctx, room.ID, room.Name, room.Textures)
	go n.finishLoad(ctx, idx, gen, results)
}

func (n *Navigator) finishLoad(ctx context.Context, idx, gen int, results <-chan texture.Result) {
	res := <-results

	n.mu.Lock()
	if gen != n.gen {
		// Superseded mid-flight. The finished cubemap is discarded and must
		// never be swapped into the visible scene.
		n.mu.Unlock()
		return
	}
	if res.Err != nil {
		// Load-level failures (context cancellation, missing refs) keep the
		// previous room active; per-face errors were already recovered.
		n.state = StateIdle
		room := n.graph.Room(n.current)
		n.mu.Unlock()
		log.Printf("⚠️ navigator: load failed: %v", res.Err)
		n.emit(Event{State: StateIdle, RoomID: room.ID, RoomName: room.Name})
		n.runPending(ctx)
		return
	}

	n.state = StateTransitioning
	room := n.graph.Room(idx)
	d := n.transition
	n.mu.Unlock()
	n.emit(Event{State: StateTransitioning, RoomID: room.ID, RoomName: room.Name})

	// Fixed-duration transition, decoupled from load completion.
	timer := time.NewTimer(d)
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
	}

	n.mu.Lock()
	n.current = idx
	n.active = res.Cubemap
	n.state = StateIdle
	n.mu.Unlock()
	n.emit(Event{State: StateIdle, RoomID: room.ID, RoomName: room.Name})

	n.runPending(ctx)
}

func (n *Navigator) runPending(ctx context.Context) {
	n.mu.Lock()
	pending := n.pending
	n.pending = nil
	n.mu.Unlock()
	if pending != nil {
		n.beginLoad(ctx, *pending)
	}
}

func (n *Navigator) emit(ev Event) {
	n.mu.Lock()
	listeners := make([]func(Event), len(n.listeners))
	copy(listeners, n.listeners)
	n.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}
