package graph

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salehouse/tour3d/internal/tour/texture"
)

type fakeLoader struct {
	mu    sync.Mutex
	loads []int64
	delay time.Duration
}

func (f *fakeLoader) LoadAsync(ctx context.Context, roomID int64, roomName string, refs [6]string) <-chan texture.Result {
	f.mu.Lock()
	f.loads = append(f.loads, roomID)
	f.mu.Unlock()

	ch := make(chan texture.Result, 1)
	go func() {
		if f.delay > 0 {
			time.Sleep(f.delay)
		}
		cm := &texture.Cubemap{RoomID: roomID}
		for i := range cm.Faces {
			cm.Faces[i] = image.NewRGBA(image.Rect(0, 0, 1, 1))
		}
		ch <- texture.Result{Cubemap: cm}
		close(ch)
	}()
	return ch
}

func (f *fakeLoader) loaded() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.loads...)
}

func sixTextures() [6]string {
	return [6]string{"a", "b", "c", "d", "e", "f"}
}

func target(id int64) *int64 { return &id }

func twoRooms() *Graph {
	return New([]Room{
		{ID: 10, Name: "A", Textures: sixTextures(), Hotspots: []Hotspot{
			{ID: "h1", Label: "To B", TargetRoom: target(20)},
		}},
		{ID: 20, Name: "B", Textures: sixTextures()},
	})
}

// collect subscribes to navigator events and lets tests wait for states.
func collect(n *Navigator) chan Event {
	ch := make(chan Event, 64)
	n.OnEvent(func(ev Event) { ch <- ev })
	return ch
}

func waitState(t *testing.T, ch chan Event, s State, roomID int64) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.State == s && ev.RoomID == roomID {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %v in room %d", s, roomID)
		}
	}
}

func TestNavigatorStateSequence(t *testing.T) {
	n := NewNavigator(twoRooms(), &fakeLoader{}, WithTransition(time.Millisecond))
	events := collect(n)

	n.Start(context.Background())
	waitState(t, events, StateIdle, 10)

	assert.Equal(t, int64(10), n.CurrentRoom().ID)
	assert.Equal(t, StateIdle, n.State())
	require.NotNil(t, n.ActiveCubemap())
	assert.Equal(t, int64(10), n.ActiveCubemap().RoomID)
}

func TestUnknownTargetIsNoOp(t *testing.T) {
	loader := &fakeLoader{}
	n := NewNavigator(twoRooms(), loader, WithTransition(time.Millisecond))
	events := collect(n)
	n.Start(context.Background())
	waitState(t, events, StateIdle, 10)

	n.GoToRoom(context.Background(), 999)

	assert.Equal(t, int64(10), n.CurrentRoom().ID)
	assert.Equal(t, StateIdle, n.State())
	assert.Equal(t, []int64{10}, loader.loaded(), "no load for unknown target")
}

func TestHotspotNavigationEndToEnd(t *testing.T) {
	// Room A links to B; B has no hotspots. Activating the hotspot moves the
	// viewer to B, which then renders zero markers.
	n := NewNavigator(twoRooms(), &fakeLoader{}, WithTransition(time.Millisecond))
	events := collect(n)
	n.Start(context.Background())
	waitState(t, events, StateIdle, 10)

	spots := n.VisibleHotspots()
	require.Len(t, spots, 1)
	n.ActivateHotspot(context.Background(), spots[0])
	waitState(t, events, StateIdle, 20)

	assert.Equal(t, int64(20), n.CurrentRoom().ID)
	assert.Empty(t, n.VisibleHotspots())
}

func TestNilTargetHotspotIsInformational(t *testing.T) {
	g := New([]Room{
		{ID: 1, Name: "Solo", Textures: sixTextures(), Hotspots: []Hotspot{
			{ID: "info", Label: "Window"},
		}},
	})
	loader := &fakeLoader{}
	n := NewNavigator(g, loader, WithTransition(time.Millisecond))
	events := collect(n)
	n.Start(context.Background())
	waitState(t, events, StateIdle, 1)

	n.ActivateHotspot(context.Background(), n.VisibleHotspots()[0])
	assert.Equal(t, []int64{1}, loader.loaded())
}

func TestHotspotsHiddenUntilLoaded(t *testing.T) {
	n := NewNavigator(twoRooms(), &fakeLoader{delay: 50 * time.Millisecond}, WithTransition(time.Millisecond))
	events := collect(n)

	assert.Nil(t, n.VisibleHotspots(), "no hotspots before the first load")

	n.Start(context.Background())
	assert.Nil(t, n.VisibleHotspots(), "no hotspots while loading")
	waitState(t, events, StateIdle, 10)
	assert.Len(t, n.VisibleHotspots(), 1)
}

func TestReentrantNavigationCoalescesLatest(t *testing.T) {
	g := New([]Room{
		{ID: 1, Name: "A", Textures: sixTextures()},
		{ID: 2, Name: "B", Textures: sixTextures()},
		{ID: 3, Name: "C", Textures: sixTextures()},
	})
	loader := &fakeLoader{delay: 30 * time.Millisecond}
	n := NewNavigator(g, loader, WithTransition(10*time.Millisecond))
	events := collect(n)
	n.Start(context.Background())

	// Both requests land while the initial load is in flight; the latest wins.
	n.GoToRoom(context.Background(), 2)
	n.GoToRoom(context.Background(), 3)

	waitState(t, events, StateIdle, 3)
	assert.Equal(t, int64(3), n.CurrentRoom().ID)
	assert.Equal(t, []int64{1, 3}, loader.loaded(), "room 2 was coalesced away")
}

func TestNotReadyRoomNeverLoads(t *testing.T) {
	g := New([]Room{
		{ID: 1, Name: "Broken", Textures: [6]string{"a", "", "c", "d", "e", "f"}},
	})
	loader := &fakeLoader{}
	n := NewNavigator(g, loader, WithTransition(time.Millisecond))
	n.Start(context.Background())

	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, loader.loaded())
	assert.Nil(t, n.ActiveCubemap())
}

func TestStartIndexDeepLink(t *testing.T) {
	g := twoRooms()

	id := int64(20)
	assert.Equal(t, 1, g.StartIndex(&id))

	missing := int64(404)
	assert.Equal(t, 0, g.StartIndex(&missing))
	assert.Equal(t, 0, g.StartIndex(nil))
}

func TestDeepLinkedNavigatorStartsAtRoom(t *testing.T) {
	n := NewNavigator(twoRooms(), &fakeLoader{}, WithTransition(time.Millisecond), WithStartRoom(20))
	events := collect(n)
	n.Start(context.Background())
	waitState(t, events, StateIdle, 20)
	assert.Equal(t, int64(20), n.CurrentRoom().ID)
}
