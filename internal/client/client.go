// Package client talks to an external tour backend over its plan-item API.
// The authoring session uses it to persist assembled rooms: creation ships
// the six face images as multipart uploads, updates carry only the mutable
// fields.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/salehouse/tour3d/internal/tour/faces"
	"github.com/salehouse/tour3d/internal/tour/graph"
)

// RoomUpload is one room ready for creation: a name plus the six face
// images in canonical order and any markers placed before saving.
type RoomUpload struct {
	Name     string
	Hotspots []graph.Hotspot
	Faces    [faces.Count]FaceFile
}

// FaceFile is an in-memory face image with its original filename.
type FaceFile struct {
	Name string
	Data []byte
}

type apiResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// API is the tour backend client.
type API struct {
	http *resty.Client
}

// New creates a client for the backend at baseURL.
func New(baseURL string) *API {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(60*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1*time.Second).
		SetHeader("Accept", "application/json")
	return &API{http: c}
}

// CreateRooms persists a batch of new rooms under plan planID, one upload
// per room. The first failure aborts the batch so the caller can retry
// with its session intact.
func (a *API) CreateRooms(ctx context.Context, planID int64, rooms []RoomUpload) error {
	for _, room := range rooms {
		if err := a.createRoom(ctx, planID, room); err != nil {
			return err
		}
	}
	return nil
}

func (a *API) createRoom(ctx context.Context, planID int64, room RoomUpload) error {
	hotspots, err := json.Marshal(room.Hotspots)
	if err != nil {
		return fmt.Errorf("client: encode hotspots: %w", err)
	}

	req := a.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"plan_id":  strconv.FormatInt(planID, 10),
			"name":     room.Name,
			"hotspots": string(hotspots),
		})
	for i, field := range faces.Fields() {
		f := room.Faces[i]
		req.SetFileReader("textures["+field+"]", f.Name, bytes.NewReader(f.Data))
	}

	var body apiResponse
	resp, err := req.SetResult(&body).Post("/api/v1/setting-page/plan-item/add")
	if err != nil {
		return fmt.Errorf("client: create room %q: %w", room.Name, err)
	}
	if resp.IsError() {
		return fmt.Errorf("client: create room %q: backend returned %d: %s",
			room.Name, resp.StatusCode(), body.Message)
	}
	log.Printf("📤 client: created room %q under plan %d", room.Name, planID)
	return nil
}

// UpdateRoom persists name and marker changes of an existing room.
func (a *API) UpdateRoom(ctx context.Context, planItemID int64, name string, hotspots []graph.Hotspot) error {
	encoded, err := json.Marshal(hotspots)
	if err != nil {
		return fmt.Errorf("client: encode hotspots: %w", err)
	}

	var body apiResponse
	resp, err := a.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"plan_item_id": strconv.FormatInt(planItemID, 10),
			"name":         name,
			"hotspots":     string(encoded),
		}).
		SetResult(&body).
		Post("/api/v1/setting-page/plan-item/update")
	if err != nil {
		return fmt.Errorf("client: update room %d: %w", planItemID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("client: update room %d: backend returned %d: %s",
			planItemID, resp.StatusCode(), body.Message)
	}
	return nil
}
