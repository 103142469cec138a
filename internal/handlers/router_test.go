package handlers

import (
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salehouse/tour3d/internal/config"
	"github.com/salehouse/tour3d/internal/storage"
	"github.com/salehouse/tour3d/internal/tour/faces"
	"github.com/salehouse/tour3d/internal/tour/graph"
	"github.com/salehouse/tour3d/internal/tour/texture"
	ws "github.com/salehouse/tour3d/internal/websocket"
)

// newTestRouter wires everything but the database; the routes under test
// here never touch it.
func newTestRouter(t *testing.T) *Router {
	t.Helper()
	store, err := storage.New(t.TempDir(), "http://localhost:8080/storage/")
	require.NoError(t, err)
	cfg := &config.Config{
		Tour: config.TourConfig{ViewerBaseURL: "http://localhost:8080/tour"},
	}
	return NewRouter(nil, store, ws.NewHub(), cfg)
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestCaseInsensitiveRouting(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/HEALTH", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/api/v1/tour/qr", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestTourQR(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/tour/qr?home_id=12&room=3", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 512, img.Bounds().Dx())
}

func TestTourQRRejectsNonNumericParams(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/tour/qr?home_id=abc", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

type stubLoader struct{}

func (stubLoader) LoadAsync(_ context.Context, roomID int64, _ string, _ [faces.Count]string) <-chan texture.Result {
	ch := make(chan texture.Result, 1)
	ch <- texture.Result{Cubemap: &texture.Cubemap{RoomID: roomID}}
	close(ch)
	return ch
}

// A server-driven navigator attached to a session streams its state
// transitions to every viewer on the session socket.
func TestAttachNavigatorStreamsStates(t *testing.T) {
	store, err := storage.New(t.TempDir(), "")
	require.NoError(t, err)
	hub := ws.NewHub()
	go hub.Run()
	r := NewRouter(nil, store, hub, &config.Config{})

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/tour/guided-1"
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration goes through the hub loop; wait for the viewer to land
	// before the navigator starts emitting.
	deadline := time.Now().Add(time.Second)
	for hub.Viewers("guided-1") == 0 {
		require.False(t, time.Now().After(deadline), "viewer never joined")
		time.Sleep(time.Millisecond)
	}

	textures := [faces.Count]string{"px", "nx", "py", "ny", "pz", "nz"}
	g := graph.New([]graph.Room{{ID: 1, Name: "Hall", Textures: textures}})
	nav := graph.NewNavigator(g, stubLoader{}, graph.WithTransition(time.Millisecond))
	r.AttachNavigator("guided-1", nav)
	nav.Start(context.Background())

	var states []string
	for len(states) < 3 {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var ev struct {
			State  string `json:"state"`
			RoomID int64  `json:"roomId"`
		}
		require.NoError(t, json.Unmarshal(msg, &ev))
		assert.Equal(t, int64(1), ev.RoomID)
		states = append(states, ev.State)
	}
	assert.Equal(t, []string{"loading", "transitioning", "idle"}, states)
}

func TestStorageServesSavedTextures(t *testing.T) {
	store, err := storage.New(t.TempDir(), "http://localhost:8080/storage/")
	require.NoError(t, err)
	rel, err := store.SaveTexture(1, "posx", "face.jpg", strings.NewReader("pixels"))
	require.NoError(t, err)

	cfg := &config.Config{}
	r := NewRouter(nil, store, ws.NewHub(), cfg)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/storage/"+rel, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pixels", rec.Body.String())
}
