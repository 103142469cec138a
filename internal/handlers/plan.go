package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/salehouse/tour3d/internal/models"
	"github.com/salehouse/tour3d/internal/tour/faces"
	"github.com/salehouse/tour3d/internal/tour/graph"
)

const maxUploadSize = 64 << 20

// addPlan creates a named plan to hang rooms under
func (r *Router) addPlan(w http.ResponseWriter, req *http.Request) {
	var plan models.Plan
	if err := json.NewDecoder(req.Body).Decode(&plan); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if plan.Name == "" {
		respondError(w, http.StatusUnprocessableEntity, "Plan name is required")
		return
	}
	if err := r.db.Create(&plan).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create plan")
		return
	}
	respondJSON(w, http.StatusCreated, plan)
}

// listPlans returns all plans with their rooms
func (r *Router) listPlans(w http.ResponseWriter, req *http.Request) {
	var plans []models.Plan
	if err := r.db.Preload("Items").Find(&plans).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch plans")
		return
	}
	respondJSON(w, http.StatusOK, plans)
}

// addPlanItem creates one room from a multipart upload: plan_id, name,
// hotspots JSON and the six face images as textures[posx] .. textures[negz].
func (r *Router) addPlanItem(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}

	planID, err := strconv.ParseInt(req.FormValue("plan_id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "plan_id is required")
		return
	}
	name := strings.TrimSpace(req.FormValue("name"))
	if name == "" {
		respondError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	var plan models.Plan
	if err := r.db.First(&plan, planID).Error; err != nil {
		respondError(w, http.StatusNotFound, "Plan not found")
		return
	}

	item := models.PlanItem{PlanID: planID, Name: name}
	if err := applyHotspots(&item, req.FormValue("hotspots")); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	// Create first so the texture paths can carry the item id.
	if err := r.db.Create(&item).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create plan item")
		return
	}

	if err := r.saveTextures(req, &item, true); err != nil {
		r.db.Delete(&models.PlanItem{}, item.ID)
		_ = r.store.RemoveItem(item.ID)
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := r.db.Save(&item).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to store textures")
		return
	}
	respondJSON(w, http.StatusCreated, r.itemPayload(item))
}

// listPlanItems returns a paginated room list, filterable by plan and name
func (r *Router) listPlanItems(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	tx := r.db.Model(&models.PlanItem{})
	if planID := q.Get("plan_id"); planID != "" {
		tx = tx.Where("plan_id = ?", planID)
	}
	if search := q.Get("search"); search != "" {
		tx = tx.Where("name ILIKE ?", "%"+search+"%")
	}

	sort := q.Get("sort")
	switch sort {
	case "name", "created_at", "updated_at":
	default:
		sort = "id"
	}
	order := "asc"
	if strings.EqualFold(q.Get("order"), "desc") {
		order = "desc"
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to count plan items")
		return
	}

	var items []models.PlanItem
	err := tx.Order(sort + " " + order).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&items).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch plan items")
		return
	}

	payload := make([]map[string]interface{}, len(items))
	for i, item := range items {
		payload[i] = r.itemPayload(item)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"data":     payload,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// getPlanItem returns one room with resolved texture URLs
func (r *Router) getPlanItem(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseInt(req.URL.Query().Get("plan_item_id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "plan_item_id is required")
		return
	}
	var item models.PlanItem
	if err := r.db.First(&item, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Plan item not found")
		return
	}
	respondJSON(w, http.StatusOK, r.itemPayload(item))
}

// updatePlanItem mutates name and hotspots; face images are replaced only
// when the form carries new files.
func (r *Router) updatePlanItem(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseMultipartForm(maxUploadSize); err != nil && err != http.ErrNotMultipart {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	id, err := strconv.ParseInt(req.FormValue("plan_item_id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "plan_item_id is required")
		return
	}
	var item models.PlanItem
	if err := r.db.First(&item, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Plan item not found")
		return
	}

	if name := strings.TrimSpace(req.FormValue("name")); name != "" {
		item.Name = name
	}
	if hotspots, ok := formValue(req, "hotspots"); ok {
		if err := applyHotspots(&item, hotspots); err != nil {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	if req.MultipartForm != nil {
		if err := r.saveTextures(req, &item, false); err != nil {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	if err := r.db.Save(&item).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update plan item")
		return
	}
	respondJSON(w, http.StatusOK, r.itemPayload(item))
}

// deletePlanItem removes a room and its stored textures
func (r *Router) deletePlanItem(w http.ResponseWriter, req *http.Request) {
	_ = req.ParseForm()
	id, err := strconv.ParseInt(req.FormValue("plan_item_id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "plan_item_id is required")
		return
	}
	if err := r.db.Delete(&models.PlanItem{}, id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete plan item")
		return
	}
	_ = r.store.RemoveItem(id)
	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": id})
}

// saveTextures stores uploaded face files on the item. When required is
// true, every one of the six faces must be present.
func (r *Router) saveTextures(req *http.Request, item *models.PlanItem, required bool) error {
	for f := faces.PosX; f < faces.Count; f++ {
		field := f.Field()
		file, header, err := req.FormFile("textures[" + field + "]")
		if err != nil {
			if required {
				return fmt.Errorf("missing textures[%s]", field)
			}
			continue
		}
		rel, err := r.store.SaveTexture(item.ID, field, header.Filename, file)
		file.Close()
		if err != nil {
			return fmt.Errorf("failed to store textures[%s]", field)
		}
		item.SetTexture(f, rel)
	}
	return nil
}

func applyHotspots(item *models.PlanItem, raw string) error {
	if raw == "" {
		return nil
	}
	var hotspots []graph.Hotspot
	if err := json.Unmarshal([]byte(raw), &hotspots); err != nil {
		return fmt.Errorf("hotspots is not valid JSON")
	}
	return item.SetHotspots(hotspots)
}

// formValue distinguishes an absent field from an empty one so updates can
// clear hotspots with an explicit empty array.
func formValue(req *http.Request, key string) (string, bool) {
	if req.MultipartForm != nil {
		if vs, ok := req.MultipartForm.Value[key]; ok && len(vs) > 0 {
			return vs[0], true
		}
		return "", false
	}
	if vs, ok := req.PostForm[key]; ok && len(vs) > 0 {
		return vs[0], true
	}
	return "", false
}

// itemPayload is the wire shape of a room: the record plus texture URLs
// resolved against the storage base.
func (r *Router) itemPayload(item models.PlanItem) map[string]interface{} {
	t := item.TextureJSON()
	return map[string]interface{}{
		"id":         item.ID,
		"plan_id":    item.PlanID,
		"name":       item.Name,
		"hotspots":   item.HotspotList(),
		"created_at": item.CreatedAt,
		"updated_at": item.UpdatedAt,
		"textures": models.TextureMap{
			PosX: r.store.BuildURL(t.PosX),
			NegX: r.store.BuildURL(t.NegX),
			PosY: r.store.BuildURL(t.PosY),
			NegY: r.store.BuildURL(t.NegY),
			PosZ: r.store.BuildURL(t.PosZ),
			NegZ: r.store.BuildURL(t.NegZ),
		},
	}
}
