package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/falconilham/gym-nexus-sub000/internal/repository"
	"github.com/falconilham/gym-nexus-sub000/internal/service"
)

func (h *Handlers) ListGyms(c *gin.Context) {
	page, err := queryPage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	f := repository.GymFilter{Page: page, Search: strings.TrimSpace(c.Query("search"))}
	if claims := claimsFrom(c); !claims.IsSuperAdmin() {
		f.IDs = []uint{}
		if claims.GymID != nil {
			f.IDs = append(f.IDs, *claims.GymID)
		}
	}
	res, err := h.svc.Gyms.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res)
}

func (h *Handlers) CreateGym(c *gin.Context) {
	var input service.CreateGymDTO
	if !bindJSON(c, &input) {
		return
	}
	gym, err := h.svc.Gyms.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gym)
}

func (h *Handlers) GetGym(c *gin.Context) {
	gym, err := h.svc.Gyms.Get(c.Request.Context(), gymIDFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gym)
}

func (h *Handlers) UpdateGym(c *gin.Context) {
	var input service.UpdateGymDTO
	if !bindJSON(c, &input) {
		return
	}
	if input.IsActive != nil && !claimsFrom(c).IsSuperAdmin() {
		forbid(c, "only a super admin can activate or deactivate a gym")
		return
	}
	gym, err := h.svc.Gyms.Update(c.Request.Context(), gymIDFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gym)
}

func (h *Handlers) DeleteGym(c *gin.Context) {
	if err := h.svc.Gyms.Delete(c.Request.Context(), gymIDFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadGymLogo accepts a multipart form with the file in field "logo".
func (h *Handlers) UploadGymLogo(c *gin.Context) {
	file, err := c.FormFile("logo")
	if err != nil {
		respondError(c, badRequest("logo file is required"))
		return
	}
	f, err := file.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	gym, err := h.svc.Gyms.UploadLogo(c.Request.Context(), gymIDFrom(c), file.Filename, file.Size, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gym)
}

func (h *Handlers) GymStats(c *gin.Context) {
	stats, err := h.svc.Stats.Dashboard(c.Request.Context(), gymIDFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handlers) ListActivity(c *gin.Context) {
	page, err := queryPage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.svc.Activity.List(c.Request.Context(), gymIDFrom(c), repository.ActivityLogFilter{
		Page:       page,
		EntityType: c.Query("entityType"),
		Action:     c.Query("action"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res)
}

func (h *Handlers) ListAdmins(c *gin.Context) {
	page, err := queryPage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.svc.Admins.List(c.Request.Context(), gymIDFrom(c), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res)
}

func (h *Handlers) CreateAdmin(c *gin.Context) {
	var input service.CreateAdminDTO
	if !bindJSON(c, &input) {
		return
	}
	admin, err := h.svc.Admins.Create(c.Request.Context(), gymIDFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, admin)
}

func (h *Handlers) GetAdmin(c *gin.Context) {
	id, ok := paramID(c, "adminId")
	if !ok {
		return
	}
	admin, err := h.svc.Admins.GetInGym(c.Request.Context(), gymIDFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, admin)
}

func (h *Handlers) UpdateAdmin(c *gin.Context) {
	id, ok := paramID(c, "adminId")
	if !ok {
		return
	}
	var input service.UpdateAdminDTO
	if !bindJSON(c, &input) {
		return
	}
	admin, err := h.svc.Admins.Update(c.Request.Context(), gymIDFrom(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, admin)
}

func (h *Handlers) DeleteAdmin(c *gin.Context) {
	id, ok := paramID(c, "adminId")
	if !ok {
		return
	}
	if err := h.svc.Admins.Delete(c.Request.Context(), gymIDFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
