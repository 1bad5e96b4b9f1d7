package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/falconilham/gym-nexus-sub000/internal/repository"
	"github.com/falconilham/gym-nexus-sub000/internal/service"
)

func classFilter(c *gin.Context) (repository.ClassFilter, error) {
	page, err := queryPage(c)
	if err != nil {
		return repository.ClassFilter{}, err
	}
	from, to, err := queryRange(c)
	if err != nil {
		return repository.ClassFilter{}, err
	}
	trainerID, err := queryUint(c, "trainerId")
	if err != nil {
		return repository.ClassFilter{}, err
	}
	return repository.ClassFilter{
		Page:      page,
		From:      from,
		To:        to,
		TrainerID: trainerID,
		Status:    c.Query("status"),
		Search:    strings.TrimSpace(c.Query("search")),
	}, nil
}

func (h *Handlers) ListClasses(c *gin.Context) {
	f, err := classFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.svc.Classes.List(c.Request.Context(), gymIDFrom(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res)
}

func (h *Handlers) CreateClass(c *gin.Context) {
	var input service.CreateClassDTO
	if !bindJSON(c, &input) {
		return
	}
	class, err := h.svc.Classes.Create(c.Request.Context(), gymIDFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, class)
}

func (h *Handlers) GetClass(c *gin.Context) {
	id, ok := paramID(c, "classId")
	if !ok {
		return
	}
	class, err := h.svc.Classes.Get(c.Request.Context(), gymIDFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

func (h *Handlers) UpdateClass(c *gin.Context) {
	id, ok := paramID(c, "classId")
	if !ok {
		return
	}
	var input service.UpdateClassDTO
	if !bindJSON(c, &input) {
		return
	}
	class, err := h.svc.Classes.Update(c.Request.Context(), gymIDFrom(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

func (h *Handlers) CancelClass(c *gin.Context) {
	id, ok := paramID(c, "classId")
	if !ok {
		return
	}
	class, err := h.svc.Classes.Cancel(c.Request.Context(), gymIDFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

func (h *Handlers) DeleteClass(c *gin.Context) {
	id, ok := paramID(c, "classId")
	if !ok {
		return
	}
	if err := h.svc.Classes.Delete(c.Request.Context(), gymIDFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) ListClassBookings(c *gin.Context) {
	id, ok := paramID(c, "classId")
	if !ok {
		return
	}
	items, err := h.svc.Bookings.ListByClass(c.Request.Context(), gymIDFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, items)
}

func (h *Handlers) CreateBooking(c *gin.Context) {
	id, ok := paramID(c, "classId")
	if !ok {
		return
	}
	var input service.CreateBookingDTO
	if !bindJSON(c, &input) {
		return
	}
	booking, err := h.svc.Bookings.Book(c.Request.Context(), gymIDFrom(c), id, input.MemberID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *Handlers) CancelBooking(c *gin.Context) {
	id, ok := paramID(c, "bookingId")
	if !ok {
		return
	}
	booking, err := h.svc.Bookings.Cancel(c.Request.Context(), gymIDFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *Handlers) AttendBooking(c *gin.Context) {
	id, ok := paramID(c, "bookingId")
	if !ok {
		return
	}
	booking, err := h.svc.Bookings.MarkAttended(c.Request.Context(), gymIDFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
