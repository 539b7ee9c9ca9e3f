package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/crudgate/internal/services"
)

// AdminUsersController serves /api/v1/admin/users. Permission checks are
// attached at routing time.
type AdminUsersController struct {
	svc *services.UserService
}

func NewAdminUsersController(svc *services.UserService) *AdminUsersController {
	return &AdminUsersController{svc: svc}
}

func (uc *AdminUsersController) List(c *gin.Context) {
	var q services.UserListQuery
	if err := bindQuery(c, &q); err != nil {
		respondError(c, err)
		return
	}

	page, err := uc.svc.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, page)
}

func (uc *AdminUsersController) Get(c *gin.Context) {
	user, err := uc.svc.Get(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

func (uc *AdminUsersController) Create(c *gin.Context) {
	var dto services.UserCreate
	if err := bindJSON(c, &dto); err != nil {
		respondError(c, err)
		return
	}

	user, err := uc.svc.Create(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, user)
}
