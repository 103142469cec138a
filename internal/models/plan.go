package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/salehouse/tour3d/internal/tour/faces"
	"github.com/salehouse/tour3d/internal/tour/graph"
)

// Plan is a layout (floor plan) that owns a set of panorama rooms.
type Plan struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []PlanItem `gorm:"foreignKey:PlanID" json:"items,omitempty"`
}

func (Plan) TableName() string { return "plans" }

// PlanItem is one panorama room of a plan: six face textures stored as
// relative storage paths plus the hotspot set as a JSON document.
type PlanItem struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PlanID int64  `gorm:"index;not null" json:"plan_id"`
	Name   string `gorm:"type:varchar(255);not null" json:"name"`

	// Face texture paths in canonical order, relative to the storage root.
	PosX string `gorm:"column:posx;type:varchar(512)" json:"-"`
	NegX string `gorm:"column:negx;type:varchar(512)" json:"-"`
	PosY string `gorm:"column:posy;type:varchar(512)" json:"-"`
	NegY string `gorm:"column:negy;type:varchar(512)" json:"-"`
	PosZ string `gorm:"column:posz;type:varchar(512)" json:"-"`
	NegZ string `gorm:"column:negz;type:varchar(512)" json:"-"`

	// Hotspots holds the serialized []graph.Hotspot document. The server
	// stores the merged array as submitted; it never diffs hotspots.
	Hotspots datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"hotspots"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Plan *Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

func (PlanItem) TableName() string { return "plan_items" }

// Textures returns the face paths in canonical order.
func (p PlanItem) Textures() [faces.Count]string {
	return [faces.Count]string{p.PosX, p.NegX, p.PosY, p.NegY, p.PosZ, p.NegZ}
}

// SetTexture stores a face path into its canonical slot.
func (p *PlanItem) SetTexture(f faces.Face, path string) {
	switch f {
	case faces.PosX:
		p.PosX = path
	case faces.NegX:
		p.NegX = path
	case faces.PosY:
		p.PosY = path
	case faces.NegY:
		p.NegY = path
	case faces.PosZ:
		p.PosZ = path
	case faces.NegZ:
		p.NegZ = path
	}
}

// HotspotList decodes the hotspot document. A missing or empty column
// yields an empty list, never an error the viewer has to handle.
func (p PlanItem) HotspotList() []graph.Hotspot {
	if len(p.Hotspots) == 0 {
		return nil
	}
	var out []graph.Hotspot
	if err := json.Unmarshal(p.Hotspots, &out); err != nil {
		return nil
	}
	return out
}

// SetHotspots encodes and stores the full hotspot set.
func (p *PlanItem) SetHotspots(hotspots []graph.Hotspot) error {
	if hotspots == nil {
		hotspots = []graph.Hotspot{}
	}
	data, err := json.Marshal(hotspots)
	if err != nil {
		return err
	}
	p.Hotspots = datatypes.JSON(data)
	return nil
}

// Room converts the persisted record into a tour graph node.
func (p PlanItem) Room() graph.Room {
	return graph.Room{
		ID:       p.ID,
		Name:     p.Name,
		Textures: p.Textures(),
		Hotspots: p.HotspotList(),
	}
}

// TextureMap is the JSON shape of the textures object in room payloads.
type TextureMap struct {
	PosX string `json:"posx"`
	NegX string `json:"negx"`
	PosY string `json:"posy"`
	NegY string `json:"negy"`
	PosZ string `json:"posz"`
	NegZ string `json:"negz"`
}

// TextureJSON returns the textures object for API responses.
func (p PlanItem) TextureJSON() TextureMap {
	return TextureMap{
		PosX: p.PosX, NegX: p.NegX,
		PosY: p.PosY, NegY: p.NegY,
		PosZ: p.PosZ, NegZ: p.NegZ,
	}
}
