package authoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/salehouse/tour3d/internal/client"
	"github.com/salehouse/tour3d/internal/tour/faces"
	"github.com/salehouse/tour3d/internal/tour/geometry"
	"github.com/salehouse/tour3d/internal/tour/graph"
)

type fakeSaver struct {
	err     error
	created []client.RoomUpload
	updated []graph.Hotspot
	name    string
	calls   int
}

func (f *fakeSaver) CreateRooms(_ context.Context, _ int64, rooms []client.RoomUpload) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, rooms...)
	return nil
}

func (f *fakeSaver) UpdateRoom(_ context.Context, _ int64, name string, hotspots []graph.Hotspot) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.name = name
	f.updated = hotspots
	return nil
}

func sixFiles() []client.FaceFile {
	fields := faces.Fields()
	files := make([]client.FaceFile, faces.Count)
	for i, f := range fields {
		files[i] = client.FaceFile{Name: f + ".jpg", Data: []byte("img-" + f)}
	}
	return files
}

func TestAddRoomResolvesFaces(t *testing.T) {
	s := NewCreateSession(&fakeSaver{}, 1)

	// Shuffled names still land in canonical slots.
	files := []client.FaceFile{
		{Name: "back.jpg", Data: []byte("b")},
		{Name: "front.jpg", Data: []byte("f")},
		{Name: "top.jpg", Data: []byte("t")},
		{Name: "left.jpg", Data: []byte("l")},
		{Name: "right.jpg", Data: []byte("r")},
		{Name: "bottom.jpg", Data: []byte("d")},
	}
	room, err := s.AddRoom("Hall", files)
	require.NoError(t, err)
	assert.Equal(t, []byte("r"), room.Faces[faces.PosX].Data)
	assert.Equal(t, []byte("f"), room.Faces[faces.PosZ].Data)
	assert.Equal(t, []byte("b"), room.Faces[faces.NegZ].Data)
}

func TestAddRoomRejectsBadSet(t *testing.T) {
	s := NewCreateSession(&fakeSaver{}, 1)

	_, err := s.AddRoom("Hall", sixFiles()[:5])
	require.Error(t, err)
	assert.Empty(t, s.Rooms())
}

func TestAddMarkerAnchorsAndNumbers(t *testing.T) {
	s := NewCreateSession(&fakeSaver{}, 1)
	_, err := s.AddRoom("Hall", sixFiles())
	require.NoError(t, err)

	m1, err := s.AddMarker(0, r3.Vec{X: 250, Y: 0, Z: 0})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(m1.ID, "marker_"))
	assert.Equal(t, "Marker 1", m1.Label)
	assert.InDelta(t, geometry.InnerRadius, m1.Position.X, 1e-9)

	m2, err := s.AddMarker(0, r3.Vec{X: 0, Y: 0, Z: -100})
	require.NoError(t, err)
	assert.Equal(t, "Marker 2", m2.Label)
	assert.NotEqual(t, m1.ID, m2.ID)

	_, err = s.AddMarker(0, r3.Vec{})
	assert.ErrorIs(t, err, geometry.ErrZeroVector)
}

func TestMarkerEditing(t *testing.T) {
	s := NewCreateSession(&fakeSaver{}, 1)
	_, err := s.AddRoom("Hall", sixFiles())
	require.NoError(t, err)

	m, err := s.AddMarker(0, r3.Vec{X: 10, Y: 0, Z: 0})
	require.NoError(t, err)

	target := int64(4)
	s.SetMarkerLabel(0, m.ID, "To kitchen")
	s.SetMarkerTarget(0, m.ID, &target)

	got := s.MergedMarkers(0)
	require.Len(t, got, 1)
	assert.Equal(t, "To kitchen", got[0].Label)
	require.NotNil(t, got[0].TargetRoom)
	assert.Equal(t, target, *got[0].TargetRoom)

	s.SetMarkerLabel(0, "marker_unknown", "ignored")

	s.RemoveMarker(0, m.ID)
	assert.Empty(t, s.MergedMarkers(0))
}

func TestEditSessionEditsPersistedMarkers(t *testing.T) {
	persisted := []graph.Hotspot{{ID: "42", Label: "Old door"}}
	api := &fakeSaver{}
	s := NewEditSession(api, 7, "Kitchen", persisted)

	target := int64(9)
	s.SetMarkerLabel(0, "42", "New door")
	s.SetMarkerTarget(0, "42", &target)

	got := s.MergedMarkers(0)
	require.Len(t, got, 1)
	assert.Equal(t, "New door", got[0].Label)
	require.NotNil(t, got[0].TargetRoom)
	assert.Equal(t, target, *got[0].TargetRoom)

	// Saved payload carries the edited fields, not the originals.
	require.NoError(t, s.Save(context.Background()))
	require.Len(t, api.updated, 1)
	assert.Equal(t, "New door", api.updated[0].Label)
}

func TestEditSessionRemovesPersistedMarker(t *testing.T) {
	persisted := []graph.Hotspot{
		{ID: "42", Label: "Door"},
		{ID: "43", Label: "Window"},
	}
	s := NewEditSession(&fakeSaver{}, 7, "Kitchen", persisted)

	s.RemoveMarker(0, "42")

	got := s.MergedMarkers(0)
	require.Len(t, got, 1)
	assert.Equal(t, "43", got[0].ID)
}

func TestEditSessionMergesPersisted(t *testing.T) {
	persisted := []graph.Hotspot{{ID: "marker_old", Label: "Marker 1"}}
	api := &fakeSaver{}
	s := NewEditSession(api, 7, "Kitchen", persisted)

	m, err := s.AddMarker(0, r3.Vec{X: 0, Y: 50, Z: 0})
	require.NoError(t, err)
	assert.Equal(t, "Marker 2", m.Label)

	require.NoError(t, s.Save(context.Background()))
	assert.Equal(t, "Kitchen", api.name)
	require.Len(t, api.updated, 2)
	assert.Equal(t, "marker_old", api.updated[0].ID)
	assert.Equal(t, m.ID, api.updated[1].ID)

	// New markers fold into the persisted set after a successful save.
	assert.Len(t, s.MergedMarkers(0), 2)
}

func TestSaveFailureKeepsSession(t *testing.T) {
	api := &fakeSaver{err: errors.New("backend down")}
	s := NewCreateSession(api, 3)
	_, err := s.AddRoom("Hall", sixFiles())
	require.NoError(t, err)
	_, err = s.AddMarker(0, r3.Vec{X: 1, Y: 0, Z: 0})
	require.NoError(t, err)

	require.Error(t, s.Save(context.Background()))
	require.Len(t, s.Rooms(), 1)
	assert.Len(t, s.Rooms()[0].Markers, 1)

	// A retry after the backend recovers succeeds and resets the session.
	api.err = nil
	require.NoError(t, s.Save(context.Background()))
	assert.Empty(t, s.Rooms())
	require.Len(t, api.created, 1)
	assert.Equal(t, "Hall", api.created[0].Name)
	assert.Len(t, api.created[0].Hotspots, 1)
}

func TestPreviewLifecycle(t *testing.T) {
	s := NewCreateSession(&fakeSaver{}, 1)
	room, err := s.AddRoom("Hall", sixFiles())
	require.NoError(t, err)

	handle, data, err := s.Preview(0, faces.PosZ)
	require.NoError(t, err)
	assert.Equal(t, []byte("img-posz"), data)
	assert.Len(t, room.previews, 1)

	s.ReleasePreview(0, handle)
	assert.Empty(t, room.previews)

	_, _, err = s.Preview(5, faces.PosZ)
	assert.Error(t, err)
}

func TestRemoveRoomReleasesPreviews(t *testing.T) {
	s := NewCreateSession(&fakeSaver{}, 1)
	for i := 0; i < 2; i++ {
		_, err := s.AddRoom(fmt.Sprintf("Room %d", i+1), sixFiles())
		require.NoError(t, err)
	}
	_, _, err := s.Preview(0, faces.PosX)
	require.NoError(t, err)

	s.RemoveRoom(0)
	require.Len(t, s.Rooms(), 1)
	assert.Equal(t, "Room 2", s.Rooms()[0].Name)
}
