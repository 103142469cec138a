// Package texture loads the six face images of a room into an in-memory
// cubemap. Loads are asynchronous; a failed face is substituted with a
// generated placeholder rather than failing the room, and completion is
// signalled exactly once per load.
package texture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/salehouse/tour3d/internal/tour/faces"
)

// Cubemap is a fully resolved set of six face images in canonical order.
// Pixel data is interpreted as sRGB.
type Cubemap struct {
	RoomID int64
	Faces  [faces.Count]image.Image
	// Fallbacks marks faces that failed to load and carry a placeholder.
	Fallbacks [faces.Count]bool
}

// Fetcher retrieves the raw bytes of one face image by its reference
// (storage path or URL). Implementations decide how refs resolve.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// HTTPFetcher resolves refs against a base URL.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	url := f.BaseURL + ref
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("texture: fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Loader fetches and decodes cubemaps.
type Loader struct {
	fetcher Fetcher
}

func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{fetcher: fetcher}
}

// Result is delivered on the channel returned by LoadAsync.
type Result struct {
	Cubemap *Cubemap
	Err     error
}

// Load fetches all six faces of a room concurrently and blocks until every
// face has either decoded or been replaced by a placeholder. The room always
// reaches a renderable state; per-face failure is recoverable by design.
func (l *Loader) Load(ctx context.Context, roomID int64, roomName string, refs [faces.Count]string) (*Cubemap, error) {
	for i, ref := range refs {
		if ref == "" {
			return nil, fmt.Errorf("texture: room %d missing %s face", roomID, faces.Face(i))
		}
	}

	cm := &Cubemap{RoomID: roomID}
	var wg sync.WaitGroup
	for i := range refs {
		wg.Add(1)
		go func(f faces.Face, ref string) {
			defer wg.Done()
			img, err := l.loadFace(ctx, ref)
			if err != nil {
				log.Printf("⚠️ texture: room %d face %s: %v (using placeholder)", roomID, f, err)
				cm.Faces[f] = Fallback(f, roomName)
				cm.Fallbacks[f] = true
				return
			}
			cm.Faces[f] = img
		}(faces.Face(i), refs[i])
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cm, nil
}

// LoadAsync runs Load in the background and delivers exactly one Result.
// A load whose room has been superseded still completes; the navigator is
// responsible for discarding stale results.
func (l *Loader) LoadAsync(ctx context.Context, roomID int64, roomName string, refs [faces.Count]string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		cm, err := l.Load(ctx, roomID, roomName, refs)
		ch <- Result{Cubemap: cm, Err: err}
		close(ch)
	}()
	return ch
}

func (l *Loader) loadFace(ctx context.Context, ref string) (image.Image, error) {
	data, err := l.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}
