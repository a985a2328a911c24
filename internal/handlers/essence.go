package handlers

import (
	"net/http"
	"strconv"

	dom "Essence/internal/domain"
	"Essence/internal/dto"
	"Essence/internal/repo"
	"Essence/internal/service"

	"github.com/gin-gonic/gin"
)

type EssenceHandler struct {
	svc *service.EssenceService
}

func NewEssenceHandler(svc *service.EssenceService) *EssenceHandler {
	return &EssenceHandler{svc: svc}
}

// List godoc
// @Summary      List essences
// @Description  Filtered, paginated list. All filters combine with AND.
// @Tags         essences
// @Produce      json
// @Param        name          query  string  false  "Case-insensitive substring match"
// @Param        is_done       query  bool    false  "Exact match"
// @Param        min_quantity  query  int     false  "Inclusive lower bound"  minimum(0)
// @Param        max_quantity  query  int     false  "Inclusive upper bound"  minimum(0)
// @Param        limit         query  int     false  "Page size (1-100)"      default(10)
// @Param        offset        query  int     false  "Page offset"            default(0)
// @Success      200  {array}   dto.EssenceResponse
// @Failure      422  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       / [get]
func (h *EssenceHandler) List(c *gin.Context) {
	var q dto.ListEssencesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	list, err := h.svc.List(c.Request.Context(), repo.EssenceFilter{
		Name:        q.Name,
		IsDone:      q.IsDone,
		MinQuantity: q.MinQuantity,
		MaxQuantity: q.MaxQuantity,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, essencesToResponses(list))
}

// GetByID godoc
// @Summary      Get an essence by ID
// @Tags         essences
// @Produce      json
// @Param        id   path      int  true  "Essence ID"
// @Success      200  {object}  dto.EssenceResponse
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /{id} [get]
func (h *EssenceHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	e, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		if err == service.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": service.ErrNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, essenceToResponse(e))
}

// Create godoc
// @Summary      Create an essence
// @Tags         essences
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateEssenceRequest  true  "Essence body"
// @Success      201   {object}  dto.EssenceResponse
// @Failure      422   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       / [post]
func (h *EssenceHandler) Create(c *gin.Context) {
	var req dto.CreateEssenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	e, err := h.svc.Create(c.Request.Context(), createToDomain(req))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, essenceToResponse(e))
}

// BulkCreate godoc
// @Summary      Create essences in bulk
// @Description  Persists all payloads in a single transaction; any invalid element rejects the whole request.
// @Tags         essences
// @Accept       json
// @Produce      json
// @Param        body  body      []dto.CreateEssenceRequest  true  "Essence bodies"
// @Success      201   {array}   dto.EssenceResponse
// @Failure      422   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /bulk [post]
func (h *EssenceHandler) BulkCreate(c *gin.Context) {
	var reqs []dto.CreateEssenceRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	es := make([]dom.Essence, len(reqs))
	for i, req := range reqs {
		es[i] = createToDomain(req)
	}
	out, err := h.svc.BulkCreate(c.Request.Context(), es)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, essencesToResponses(out))
}

// Replace godoc
// @Summary      Replace an essence
// @Description  Overwrites every field of the stored record.
// @Tags         essences
// @Accept       json
// @Produce      json
// @Param        id    path      int  true  "Essence ID"
// @Param        body  body      dto.ReplaceEssenceRequest  true  "Full replacement"
// @Success      200   {object}  dto.EssenceResponse
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /{id} [put]
func (h *EssenceHandler) Replace(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ReplaceEssenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	e, err := h.svc.Replace(c.Request.Context(), id, dom.Essence{
		Name:     *req.Name,
		Quantity: *req.Quantity,
		IsDone:   *req.IsDone,
	})
	if err != nil {
		if err == service.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": service.ErrNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, essenceToResponse(e))
}

// Update godoc
// @Summary      Partially update an essence
// @Description  Applies only the fields present in the payload.
// @Tags         essences
// @Accept       json
// @Produce      json
// @Param        id    path      int  true  "Essence ID"
// @Param        body  body      dto.UpdateEssenceRequest  true  "Partial update"
// @Success      200   {object}  dto.EssenceResponse
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /{id} [patch]
func (h *EssenceHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateEssenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	e, err := h.svc.Update(c.Request.Context(), id, req.Name, req.Quantity, req.IsDone)
	if err != nil {
		if err == service.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": service.ErrNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, essenceToResponse(e))
}

// Delete godoc
// @Summary      Delete an essence
// @Tags         essences
// @Param        id   path  int  true  "Essence ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /{id} [delete]
func (h *EssenceHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if err == service.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": service.ErrNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func createToDomain(req dto.CreateEssenceRequest) dom.Essence {
	e := dom.Essence{Name: *req.Name, Quantity: *req.Quantity}
	if req.IsDone != nil {
		e.IsDone = *req.IsDone
	}
	return e
}

func essenceToResponse(e dom.Essence) dto.EssenceResponse {
	return dto.EssenceResponse{
		ID:       e.ID,
		Name:     e.Name,
		Quantity: e.Quantity,
		IsDone:   e.IsDone,
	}
}

func essencesToResponses(list []dom.Essence) []dto.EssenceResponse {
	out := make([]dto.EssenceResponse, len(list))
	for i := range list {
		out[i] = essenceToResponse(list[i])
	}
	return out
}
