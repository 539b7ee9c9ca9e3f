package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/crudgate/internal/services"
)

type SampleItemsController struct {
	svc *services.SampleItemService
}

func NewSampleItemsController(svc *services.SampleItemService) *SampleItemsController {
	return &SampleItemsController{svc: svc}
}

func withMeta(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.Query("with_meta"))
	return v
}

func (sc *SampleItemsController) List(c *gin.Context) {
	var q services.SampleItemListQuery
	if err := bindQuery(c, &q); err != nil {
		respondError(c, err)
		return
	}

	page, err := sc.svc.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, page)
}

func (sc *SampleItemsController) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := sc.svc.Get(c.Request.Context(), id, withMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item)
}

func (sc *SampleItemsController) GetByUUID(c *gin.Context) {
	item, err := sc.svc.GetByUUID(c.Request.Context(), c.Param("uuid"), withMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item)
}

func (sc *SampleItemsController) Create(c *gin.Context) {
	var dto services.SampleItemCreate
	if err := bindJSON(c, &dto); err != nil {
		respondError(c, err)
		return
	}

	item, err := sc.svc.Create(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, item)
}

func (sc *SampleItemsController) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var dto services.SampleItemUpdate
	if err := bindJSON(c, &dto); err != nil {
		respondError(c, err)
		return
	}

	item, err := sc.svc.Update(c.Request.Context(), id, dto)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item)
}

func (sc *SampleItemsController) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := sc.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondNoContent(c)
}

// LogicalDelete soft-deletes the item; deleting a missing item is a no-op.
func (sc *SampleItemsController) LogicalDelete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := sc.svc.LogicalDelete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondNoContent(c)
}
