package models

import "time"

// Object is a development (a building project) holding blocks of homes.
type Object struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Blocks []Block `gorm:"foreignKey:ObjectID" json:"blocks,omitempty"`
}

func (Object) TableName() string { return "objects" }

// Block is one named section of an object.
type Block struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ObjectID int64  `gorm:"index;not null" json:"object_id"`
	Name     string `gorm:"type:varchar(100);not null" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Homes []Home `gorm:"foreignKey:BlockID" json:"homes,omitempty"`
}

func (Block) TableName() string { return "blocks" }

// Home is one apartment unit. Stage is kept as a string because upstream
// data mixes numeric and numeric-string floors; the grid engine coerces it.
type Home struct {
	ID              int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	ObjectID        int64   `gorm:"index" json:"object_id"`
	BlockID         int64   `gorm:"index;not null" json:"block_id"`
	PlanID          *int64  `gorm:"index" json:"plan_id,omitempty"`
	Number          int64   `gorm:"not null" json:"number"`
	Square          float64 `json:"square"`
	Stage           string  `gorm:"type:varchar(10);not null" json:"stage"`
	Status          string  `gorm:"type:varchar(20);default:'available'" json:"status"`
	NumberOfRooms   int     `gorm:"default:0" json:"number_of_rooms"`
	PriceRepaired   float64 `json:"price_repaired"`
	PriceNoRepaired float64 `json:"price_no_repaired"`
	IsRepaired      bool    `gorm:"default:false" json:"is_repaired"`
	IsResidential   bool    `gorm:"default:true" json:"is_residential"`
	IsActive        bool    `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Block *Block `gorm:"foreignKey:BlockID" json:"block,omitempty"`
	Plan  *Plan  `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

func (Home) TableName() string { return "homes" }
