package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/salehouse/tour3d/internal/building"
	"github.com/salehouse/tour3d/internal/models"
	"github.com/salehouse/tour3d/internal/services/report"
)

// addObject creates a development
func (r *Router) addObject(w http.ResponseWriter, req *http.Request) {
	var obj models.Object
	if err := json.NewDecoder(req.Body).Decode(&obj); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if obj.Name == "" {
		respondError(w, http.StatusUnprocessableEntity, "Object name is required")
		return
	}
	if err := r.db.Create(&obj).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create object")
		return
	}
	respondJSON(w, http.StatusCreated, obj)
}

// addBlock creates a block under an object
func (r *Router) addBlock(w http.ResponseWriter, req *http.Request) {
	var block models.Block
	if err := json.NewDecoder(req.Body).Decode(&block); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if block.ObjectID == 0 || block.Name == "" {
		respondError(w, http.StatusUnprocessableEntity, "object_id and name are required")
		return
	}
	if err := r.db.Create(&block).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create block")
		return
	}
	respondJSON(w, http.StatusCreated, block)
}

// addHome creates one apartment unit
func (r *Router) addHome(w http.ResponseWriter, req *http.Request) {
	var home models.Home
	if err := json.NewDecoder(req.Body).Decode(&home); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if home.BlockID == 0 {
		respondError(w, http.StatusUnprocessableEntity, "block_id is required")
		return
	}
	var block models.Block
	if err := r.db.First(&block, home.BlockID).Error; err != nil {
		respondError(w, http.StatusNotFound, "Block not found")
		return
	}
	home.ObjectID = block.ObjectID
	if home.Status == "" {
		home.Status = building.StatusAvailable
	}
	if err := r.db.Create(&home).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create home")
		return
	}
	respondJSON(w, http.StatusCreated, home)
}

// getHome returns one apartment with its block and plan relations, the
// payload behind the unit drawer
func (r *Router) getHome(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseInt(req.URL.Query().Get("home_id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "home_id is required")
		return
	}
	var home models.Home
	if err := r.db.Preload("Block").Preload("Plan").First(&home, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Home not found")
		return
	}
	respondJSON(w, http.StatusOK, home)
}

// blockHomes returns the raw per-block home lists of one object
func (r *Router) blockHomes(w http.ResponseWriter, req *http.Request) {
	sources, err := r.loadBlockSources(req)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, sources)
}

// buildingGrid returns the derived floor-grid structure the building view
// renders: floors top-down, status tallies and a fixed column count per block.
func (r *Router) buildingGrid(w http.ResponseWriter, req *http.Request) {
	sources, err := r.loadBlockSources(req)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	type blockGrid struct {
		BlockID    int64                 `json:"block_id"`
		BlockName  string                `json:"block_name"`
		Floors     []building.Floor      `json:"floors"`
		Rows       []building.Row        `json:"rows"`
		Counts     building.StatusCounts `json:"counts"`
		MaxColumns int                   `json:"max_columns"`
	}

	blocks := building.TransformBlocks(sources)
	grids := make([]blockGrid, 0, len(blocks))
	for _, b := range blocks {
		if !building.HasHomes(b.Floors) {
			continue
		}
		cols := building.MaxColumns(b.Floors)
		grids = append(grids, blockGrid{
			BlockID:    b.BlockID,
			BlockName:  b.BlockName,
			Floors:     b.Floors,
			Rows:       building.GridRows(b.Floors, cols),
			Counts:     building.Counts(b.Floors),
			MaxColumns: cols,
		})
	}
	respondJSON(w, http.StatusOK, grids)
}

// buildingReport streams the printable availability sheet as PDF
func (r *Router) buildingReport(w http.ResponseWriter, req *http.Request) {
	objectID, err := strconv.ParseInt(req.URL.Query().Get("object_id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "object_id is required")
		return
	}
	var obj models.Object
	if err := r.db.First(&obj, objectID).Error; err != nil {
		respondError(w, http.StatusNotFound, "Object not found")
		return
	}
	sources, err := r.loadBlockSources(req)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	pdf, err := report.GenerateAvailabilityPDF(report.Config{
		ObjectName: obj.Name,
		TourURL:    fmt.Sprintf("%s?object_id=%d", r.cfg.Tour.ViewerBaseURL, objectID),
	}, building.TransformBlocks(sources))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=availability_%d.pdf", objectID))
	w.Write(pdf)
}

func (r *Router) loadBlockSources(req *http.Request) ([]building.BlockSource, error) {
	objectID, err := strconv.ParseInt(req.URL.Query().Get("object_id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("object_id is required")
	}

	var blocks []models.Block
	err = r.db.
		Preload("Homes", "is_active = ?", true).
		Where("object_id = ?", objectID).
		Order("id").
		Find(&blocks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch blocks")
	}

	sources := make([]building.BlockSource, len(blocks))
	for i, b := range blocks {
		homes := make([]building.Apartment, len(b.Homes))
		for j, h := range b.Homes {
			homes[j] = toApartment(h)
		}
		sources[i] = building.BlockSource{ID: b.ID, Name: b.Name, Homes: homes}
	}
	return sources, nil
}

func toApartment(h models.Home) building.Apartment {
	return building.Apartment{
		ID:            h.ID,
		Number:        strconv.FormatInt(h.Number, 10),
		Square:        h.Square,
		Stage:         h.Stage,
		Status:        h.Status,
		NumberOfRooms: h.NumberOfRooms,
		PriceRepaired: strconv.FormatFloat(h.PriceRepaired, 'f', -1, 64),
		BlockID:       h.BlockID,
	}
}
