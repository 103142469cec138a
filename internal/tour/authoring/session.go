// Package authoring holds the editing state of a panorama tour: rooms
// assembled from uploaded face images and markers placed on the cube, kept
// in memory until an explicit save pushes them to the backend.
package authoring

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/salehouse/tour3d/internal/client"
	"github.com/salehouse/tour3d/internal/tour/faces"
	"github.com/salehouse/tour3d/internal/tour/geometry"
	"github.com/salehouse/tour3d/internal/tour/graph"
)

// Saver persists the session's rooms. Satisfied by *client.API.
type Saver interface {
	CreateRooms(ctx context.Context, planID int64, rooms []client.RoomUpload) error
	UpdateRoom(ctx context.Context, planItemID int64, name string, hotspots []graph.Hotspot) error
}

// Room is one in-progress room: six resolved face images plus the markers
// placed on it so far.
type Room struct {
	Name    string
	Faces   [faces.Count]client.FaceFile
	Markers []graph.Hotspot

	previews map[string][]byte
}

// Session is an authoring workspace over one plan. A creation session
// assembles new rooms; an edit session mutates one persisted room and
// merges its new markers with the persisted ones on save.
type Session struct {
	planID int64
	api    Saver

	rooms []*Room

	// Edit mode only.
	editItemID int64
	persisted  []graph.Hotspot
}

// NewCreateSession opens a session for assembling new rooms under planID.
func NewCreateSession(api Saver, planID int64) *Session {
	return &Session{planID: planID, api: api}
}

// NewEditSession opens a session over one persisted room. Markers already
// saved stay untouched; new ones are appended on save.
func NewEditSession(api Saver, planItemID int64, name string, persisted []graph.Hotspot) *Session {
	s := &Session{api: api, editItemID: planItemID, persisted: persisted}
	s.rooms = []*Room{{Name: name}}
	return s
}

func (s *Session) editMode() bool { return s.editItemID != 0 }

// AddRoom resolves six uploaded images into canonical face order and adds
// the room to the session. Files that cannot be resolved reject the whole
// room.
func (s *Session) AddRoom(name string, files []client.FaceFile) (*Room, error) {
	inputs := make([]faces.Input, len(files))
	for i, f := range files {
		inputs[i] = faces.Input{Name: f.Name, Ref: strconv.Itoa(i)}
	}
	resolved, err := faces.Resolve(inputs)
	if err != nil {
		return nil, err
	}

	room := &Room{Name: name}
	for f, in := range resolved {
		i, _ := strconv.Atoi(in.Ref)
		room.Faces[f] = files[i]
	}
	s.rooms = append(s.rooms, room)
	return room, nil
}

// RemoveRoom drops a pending room and releases its previews.
func (s *Session) RemoveRoom(index int) {
	if index < 0 || index >= len(s.rooms) {
		return
	}
	s.rooms[index].releasePreviews()
	s.rooms = append(s.rooms[:index], s.rooms[index+1:]...)
}

// Rooms returns the session's pending rooms.
func (s *Session) Rooms() []*Room { return s.rooms }

// AddMarker places a new marker at the surface point p, pulled onto the
// hotspot shell. Labels are numbered in placement order; in edit mode the
// numbering continues after the persisted markers.
func (s *Session) AddMarker(roomIndex int, p r3.Vec) (graph.Hotspot, error) {
	room, err := s.room(roomIndex)
	if err != nil {
		return graph.Hotspot{}, err
	}
	anchored, err := geometry.Canonical(p)
	if err != nil {
		return graph.Hotspot{}, fmt.Errorf("authoring: place marker: %w", err)
	}

	n := len(room.Markers) + 1
	if s.editMode() {
		n += len(s.persisted)
	}
	m := graph.Hotspot{
		ID:       "marker_" + uuid.NewString(),
		Label:    fmt.Sprintf("Marker %d", n),
		Position: graph.Position{X: anchored.X, Y: anchored.Y, Z: anchored.Z},
	}
	room.Markers = append(room.Markers, m)
	return m, nil
}

// SetMarkerLabel renames a marker. Unknown ids are ignored.
func (s *Session) SetMarkerLabel(roomIndex int, id, label string) {
	if m := s.marker(roomIndex, id); m != nil {
		m.Label = label
	}
}

// SetMarkerTarget links a marker to a destination room, or clears the
// link when target is nil.
func (s *Session) SetMarkerTarget(roomIndex int, id string, target *int64) {
	if m := s.marker(roomIndex, id); m != nil {
		m.TargetRoom = target
	}
}

// RemoveMarker deletes one marker by id, pending or persisted.
func (s *Session) RemoveMarker(roomIndex int, id string) {
	room, err := s.room(roomIndex)
	if err != nil {
		return
	}
	for i, m := range room.Markers {
		if m.ID == id {
			room.Markers = append(room.Markers[:i], room.Markers[i+1:]...)
			return
		}
	}
	if !s.editMode() {
		return
	}
	for i, m := range s.persisted {
		if m.ID == id {
			s.persisted = append(s.persisted[:i], s.persisted[i+1:]...)
			return
		}
	}
}

// ClearMarkers drops all pending markers of a room. Persisted markers of an
// edit session are not touched.
func (s *Session) ClearMarkers(roomIndex int) {
	if room, err := s.room(roomIndex); err == nil {
		room.Markers = nil
	}
}

// MergedMarkers returns what a save would persist for the room: persisted
// markers first, then pending ones.
func (s *Session) MergedMarkers(roomIndex int) []graph.Hotspot {
	room, err := s.room(roomIndex)
	if err != nil {
		return nil
	}
	if !s.editMode() {
		return append([]graph.Hotspot(nil), room.Markers...)
	}
	merged := make([]graph.Hotspot, 0, len(s.persisted)+len(room.Markers))
	merged = append(merged, s.persisted...)
	merged = append(merged, room.Markers...)
	return merged
}

// Save pushes the session to the backend. On failure the session keeps all
// of its state so the user can retry; on success a creation session resets
// and an edit session folds its new markers into the persisted set.
func (s *Session) Save(ctx context.Context) error {
	if s.editMode() {
		room := s.rooms[0]
		merged := s.MergedMarkers(0)
		if err := s.api.UpdateRoom(ctx, s.editItemID, room.Name, merged); err != nil {
			return err
		}
		s.persisted = merged
		room.Markers = nil
		return nil
	}

	uploads := make([]client.RoomUpload, len(s.rooms))
	for i, room := range s.rooms {
		uploads[i] = client.RoomUpload{
			Name:     room.Name,
			Hotspots: room.Markers,
			Faces:    room.Faces,
		}
	}
	if err := s.api.CreateRooms(ctx, s.planID, uploads); err != nil {
		return err
	}
	log.Printf("💾 authoring: saved %d room(s) under plan %d", len(uploads), s.planID)
	s.Close()
	s.rooms = nil
	return nil
}

// Preview hands out a short-lived handle to a face image for display. The
// handle stays valid until released or the room is removed.
func (s *Session) Preview(roomIndex int, face faces.Face) (string, []byte, error) {
	room, err := s.room(roomIndex)
	if err != nil {
		return "", nil, err
	}
	data := room.Faces[face].Data
	if data == nil {
		return "", nil, fmt.Errorf("authoring: no %s image in room %d", face, roomIndex)
	}
	if room.previews == nil {
		room.previews = make(map[string][]byte)
	}
	handle := uuid.NewString()
	room.previews[handle] = data
	return handle, data, nil
}

// ReleasePreview frees one preview handle. Unknown handles are ignored.
func (s *Session) ReleasePreview(roomIndex int, handle string) {
	if room, err := s.room(roomIndex); err == nil {
		delete(room.previews, handle)
	}
}

// Close releases every outstanding preview of the session.
func (s *Session) Close() {
	for _, room := range s.rooms {
		room.releasePreviews()
	}
}

func (r *Room) releasePreviews() { r.previews = nil }

func (s *Session) room(i int) (*Room, error) {
	if i < 0 || i >= len(s.rooms) {
		return nil, fmt.Errorf("authoring: no room at index %d", i)
	}
	return s.rooms[i], nil
}

// marker looks an id up among the room's pending markers and, in edit
// mode, the persisted set, so existing hotspots are edited in place.
func (s *Session) marker(roomIndex int, id string) *graph.Hotspot {
	room, err := s.room(roomIndex)
	if err != nil {
		return nil
	}
	for i := range room.Markers {
		if room.Markers[i].ID == id {
			return &room.Markers[i]
		}
	}
	if s.editMode() {
		for i := range s.persisted {
			if s.persisted[i].ID == id {
				return &s.persisted[i]
			}
		}
	}
	return nil
}
