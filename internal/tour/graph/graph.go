// Package graph models the set of rooms in a tour and the navigation state
// machine that moves the viewer between them. Rooms are nodes; hotspots are
// directed edges with an optional nil target. Edges may dangle or point at
// their own room; navigation treats an unresolvable target as a no-op.
package graph

import (
	"github.com/salehouse/tour3d/internal/tour/faces"
)

// Position is a hotspot anchor in room space. Stored positions may sit at
// any scale; they are re-canonicalized to the inner radius before use.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hotspot is an interactive marker anchored inside a room. TargetRoom nil
// means informational only.
type Hotspot struct {
	ID         string   `json:"id"`
	Label      string   `json:"label,omitempty"`
	Position   Position `json:"position"`
	TargetRoom *int64   `json:"targetRoom"`
}

// Room is one node of the tour graph.
type Room struct {
	ID       int64
	Name     string
	Textures [faces.Count]string
	Hotspots []Hotspot
}

// Ready reports whether the room has all six resolved face references.
// A room that is not ready is never rendered, not even partially.
func (r Room) Ready() bool {
	for _, t := range r.Textures {
		if t == "" {
			return false
		}
	}
	return true
}

// Graph is the immutable room set of one tour.
type Graph struct {
	rooms []Room
	byID  map[int64]int
}

// New builds a graph from rooms in display order.
func New(rooms []Room) *Graph {
	g := &Graph{
		rooms: rooms,
		byID:  make(map[int64]int, len(rooms)),
	}
	for i, r := range rooms {
		if _, dup := g.byID[r.ID]; !dup {
			g.byID[r.ID] = i
		}
	}
	return g
}

// Len returns the number of rooms.
func (g *Graph) Len() int { return len(g.rooms) }

// Room returns the room at an index.
func (g *Graph) Room(i int) Room { return g.rooms[i] }

// IndexOf resolves a room id to its index.
func (g *Graph) IndexOf(id int64) (int, bool) {
	i, ok := g.byID[id]
	return i, ok
}

// StartIndex resolves a deep-link room id to the starting index. An
// unresolved or absent id falls back to index 0.
func (g *Graph) StartIndex(deepLinkID *int64) int {
	if deepLinkID != nil {
		if i, ok := g.byID[*deepLinkID]; ok {
			return i
		}
	}
	return 0
}
