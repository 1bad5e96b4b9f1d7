package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/falconilham/gym-nexus-sub000/internal/repository"
	"github.com/falconilham/gym-nexus-sub000/internal/service"
)

func (h *Handlers) ListMembers(c *gin.Context) {
	page, err := queryPage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.svc.Members.List(c.Request.Context(), gymIDFrom(c), repository.MemberFilter{
		Page:   page,
		Search: strings.TrimSpace(c.Query("search")),
		Status: c.Query("status"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res)
}

func (h *Handlers) CreateMember(c *gin.Context) {
	var input service.CreateMemberDTO
	if !bindJSON(c, &input) {
		return
	}
	member, err := h.svc.Members.Create(c.Request.Context(), gymIDFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (h *Handlers) GetMember(c *gin.Context) {
	id, ok := paramID(c, "memberId")
	if !ok {
		return
	}
	member, err := h.svc.Members.Get(c.Request.Context(), gymIDFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *Handlers) UpdateMember(c *gin.Context) {
	id, ok := paramID(c, "memberId")
	if !ok {
		return
	}
	var input service.UpdateMemberDTO
	if !bindJSON(c, &input) {
		return
	}
	member, err := h.svc.Members.Update(c.Request.Context(), gymIDFrom(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *Handlers) DeleteMember(c *gin.Context) {
	id, ok := paramID(c, "memberId")
	if !ok {
		return
	}
	if err := h.svc.Members.Delete(c.Request.Context(), gymIDFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) SuspendMember(c *gin.Context) {
	id, ok := paramID(c, "memberId")
	if !ok {
		return
	}
	var input service.SuspendMemberDTO
	if !bindJSON(c, &input) {
		return
	}
	member, err := h.svc.Members.Suspend(c.Request.Context(), gymIDFrom(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *Handlers) ReactivateMember(c *gin.Context) {
	id, ok := paramID(c, "memberId")
	if !ok {
		return
	}
	member, err := h.svc.Members.Reactivate(c.Request.Context(), gymIDFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *Handlers) RenewMember(c *gin.Context) {
	id, ok := paramID(c, "memberId")
	if !ok {
		return
	}
	var input service.RenewMemberDTO
	if !bindJSON(c, &input) {
		return
	}
	member, err := h.svc.Members.Renew(c.Request.Context(), gymIDFrom(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *Handlers) CancelMember(c *gin.Context) {
	id, ok := paramID(c, "memberId")
	if !ok {
		return
	}
	member, err := h.svc.Members.Cancel(c.Request.Context(), gymIDFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *Handlers) MemberCheckIns(c *gin.Context) {
	id, ok := paramID(c, "memberId")
	if !ok {
		return
	}
	page, err := queryPage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.svc.CheckIns.MemberHistory(c.Request.Context(), gymIDFrom(c), id, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res)
}

func (h *Handlers) MemberBookings(c *gin.Context) {
	id, ok := paramID(c, "memberId")
	if !ok {
		return
	}
	page, err := queryPage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.svc.Bookings.ListByMember(c.Request.Context(), gymIDFrom(c), id, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res)
}
