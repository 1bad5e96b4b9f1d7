package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/falconilham/gym-nexus-sub000/internal/repository"
	"github.com/falconilham/gym-nexus-sub000/internal/service"
)

func (h *Handlers) ListTrainers(c *gin.Context) {
	page, err := queryPage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	specialtyID, err := queryUint(c, "specialtyId")
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.svc.Trainers.List(c.Request.Context(), gymIDFrom(c), repository.TrainerFilter{
		Page:        page,
		Search:      strings.TrimSpace(c.Query("search")),
		SpecialtyID: specialtyID,
		ActiveOnly:  c.Query("active") == "true",
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res)
}

func (h *Handlers) CreateTrainer(c *gin.Context) {
	var input service.CreateTrainerDTO
	if !bindJSON(c, &input) {
		return
	}
	trainer, err := h.svc.Trainers.Create(c.Request.Context(), gymIDFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trainer)
}

func (h *Handlers) GetTrainer(c *gin.Context) {
	id, ok := paramID(c, "trainerId")
	if !ok {
		return
	}
	trainer, err := h.svc.Trainers.Get(c.Request.Context(), gymIDFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trainer)
}

func (h *Handlers) UpdateTrainer(c *gin.Context) {
	id, ok := paramID(c, "trainerId")
	if !ok {
		return
	}
	var input service.UpdateTrainerDTO
	if !bindJSON(c, &input) {
		return
	}
	trainer, err := h.svc.Trainers.Update(c.Request.Context(), gymIDFrom(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trainer)
}

func (h *Handlers) DeleteTrainer(c *gin.Context) {
	id, ok := paramID(c, "trainerId")
	if !ok {
		return
	}
	if err := h.svc.Trainers.Delete(c.Request.Context(), gymIDFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) ListSpecialties(c *gin.Context) {
	items, err := h.svc.Specialties.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, items)
}

func (h *Handlers) CreateSpecialty(c *gin.Context) {
	var input service.CreateSpecialtyDTO
	if !bindJSON(c, &input) {
		return
	}
	specialty, err := h.svc.Specialties.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, specialty)
}

func (h *Handlers) DeleteSpecialty(c *gin.Context) {
	id, ok := paramID(c, "specialtyId")
	if !ok {
		return
	}
	if err := h.svc.Specialties.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) ListEquipment(c *gin.Context) {
	page, err := queryPage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.svc.Equipment.List(c.Request.Context(), gymIDFrom(c), repository.EquipmentFilter{
		Page:     page,
		Search:   strings.TrimSpace(c.Query("search")),
		Status:   c.Query("status"),
		Category: c.Query("category"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res)
}

func (h *Handlers) CreateEquipment(c *gin.Context) {
	var input service.CreateEquipmentDTO
	if !bindJSON(c, &input) {
		return
	}
	item, err := h.svc.Equipment.Create(c.Request.Context(), gymIDFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handlers) GetEquipment(c *gin.Context) {
	id, ok := paramID(c, "equipmentId")
	if !ok {
		return
	}
	item, err := h.svc.Equipment.Get(c.Request.Context(), gymIDFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handlers) UpdateEquipment(c *gin.Context) {
	id, ok := paramID(c, "equipmentId")
	if !ok {
		return
	}
	var input service.UpdateEquipmentDTO
	if !bindJSON(c, &input) {
		return
	}
	item, err := h.svc.Equipment.Update(c.Request.Context(), gymIDFrom(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handlers) DeleteEquipment(c *gin.Context) {
	id, ok := paramID(c, "equipmentId")
	if !ok {
		return
	}
	if err := h.svc.Equipment.Delete(c.Request.Context(), gymIDFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
