// Package building turns a flat per-block apartment list into the
// floor-grouped, status-aggregated structure the building view renders.
package building

import (
	"sort"
	"strconv"
)

// Status values an apartment can carry. Anything else counts in the
// "default" bucket for tallies but renders with the available styling.
const (
	StatusAvailable = "available"
	StatusSold      = "sold"
	StatusReserved  = "reserved"
)

// Apartment is one unit as served by the backend.
type Apartment struct {
	ID            int64   `json:"id"`
	Number        string  `json:"number"`
	Square        float64 `json:"square"`
	Stage         string  `json:"stage"`
	Status        string  `json:"status"`
	NumberOfRooms int     `json:"number_of_rooms"`
	PriceRepaired string  `json:"price_repaired"`
	BlockID       int64   `json:"block_id"`
}

// BlockSource is the raw backend shape: a named block with its flat home list.
type BlockSource struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Homes []Apartment `json:"homes"`
}

// Floor groups the apartments of one storey. Homes keep the encounter order
// of the source list; they are not sorted by unit number.
type Floor struct {
	Floor int         `json:"floor"`
	Homes []Apartment `json:"homes"`
}

// Block is the derived presentation container: floors sorted top-down.
type Block struct {
	BlockID   int64   `json:"block_id"`
	BlockName string  `json:"block_name"`
	Floors    []Floor `json:"floors"`
}

// StatusCounts tallies apartments per status across a block.
type StatusCounts struct {
	Reserved  int `json:"reserved"`
	Available int `json:"available"`
	Sold      int `json:"sold"`
	Default   int `json:"default"`
}

// normalize fills the rendering defaults so no field is ever absent.
func normalize(a Apartment) Apartment {
	if a.Status == "" {
		a.Status = StatusAvailable
	}
	return a
}

// stageNumber coerces a numeric or numeric-string stage to its floor number.
func stageNumber(stage string) int {
	n, _ := strconv.Atoi(stage)
	return n
}

// TransformBlocks groups each block's homes into floors. Floors are sorted
// by number descending (top floor first), a presentation invariant.
func TransformBlocks(blocks []BlockSource) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		byFloor := make(map[int]*Floor)
		var order []int
		for _, home := range b.Homes {
			floor := stageNumber(home.Stage)
			f, ok := byFloor[floor]
			if !ok {
				f = &Floor{Floor: floor}
				byFloor[floor] = f
				order = append(order, floor)
			}
			f.Homes = append(f.Homes, normalize(home))
		}

		sort.Sort(sort.Reverse(sort.IntSlice(order)))
		floors := make([]Floor, 0, len(order))
		for _, n := range order {
			floors = append(floors, *byFloor[n])
		}

		out = append(out, Block{BlockID: b.ID, BlockName: b.Name, Floors: floors})
	}
	return out
}

// Counts tallies the block's apartments by status.
func Counts(floors []Floor) StatusCounts {
	var c StatusCounts
	for _, f := range floors {
		for _, apt := range f.Homes {
			switch status(apt) {
			case StatusReserved:
				c.Reserved++
			case StatusAvailable:
				c.Available++
			case StatusSold:
				c.Sold++
			default:
				c.Default++
			}
		}
	}
	return c
}

func status(a Apartment) string {
	if a.Status == "" {
		return StatusAvailable
	}
	return a.Status
}

// MaxColumns is the widest floor of the block. It drives a fixed-column
// grid so every floor row aligns regardless of how many units it has.
func MaxColumns(floors []Floor) int {
	max := 0
	for _, f := range floors {
		if len(f.Homes) > max {
			max = len(f.Homes)
		}
	}
	return max
}

// Cell is one slot of a rendered floor row. Filler cells pad short floors
// out to the block's column count.
type Cell struct {
	Filler    bool       `json:"filler"`
	Apartment *Apartment `json:"apartment,omitempty"`
}

// Row is one floor rendered at the block's fixed column width.
type Row struct {
	Floor int    `json:"floor"`
	Cells []Cell `json:"cells"`
}

// GridRows lays every floor out at maxColumns cells, padding with fillers.
func GridRows(floors []Floor, maxColumns int) []Row {
	rows := make([]Row, 0, len(floors))
	for _, f := range floors {
		row := Row{Floor: f.Floor, Cells: make([]Cell, maxColumns)}
		for i := range row.Cells {
			if i < len(f.Homes) {
				apt := f.Homes[i]
				row.Cells[i] = Cell{Apartment: &apt}
			} else {
				row.Cells[i] = Cell{Filler: true}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// HasHomes reports whether any floor holds at least one apartment. Blocks
// without homes are suppressed from the rendered list entirely.
func HasHomes(floors []Floor) bool {
	for _, f := range floors {
		if len(f.Homes) > 0 {
			return true
		}
	}
	return false
}
