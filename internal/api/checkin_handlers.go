package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/falconilham/gym-nexus-sub000/internal/repository"
	"github.com/falconilham/gym-nexus-sub000/internal/service"
)

// respondCheckIn writes 403 with the result body for denied scans.
func respondCheckIn(c *gin.Context, res *service.CheckInResult) {
	status := http.StatusOK
	switch {
	case res.Denied():
		status = http.StatusForbidden
	case res.Action == service.ActionCheckIn:
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

func (h *Handlers) ScanCheckIn(c *gin.Context) {
	var input service.ScanDTO
	if !bindJSON(c, &input) {
		return
	}
	res, err := h.svc.CheckIns.Scan(c.Request.Context(), gymIDFrom(c), input.QRCode)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCheckIn(c, res)
}

func (h *Handlers) ManualCheckIn(c *gin.Context) {
	var input service.ManualCheckInDTO
	if !bindJSON(c, &input) {
		return
	}
	res, err := h.svc.CheckIns.Manual(c.Request.Context(), gymIDFrom(c), input.MemberID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCheckIn(c, res)
}

func (h *Handlers) ListCheckIns(c *gin.Context) {
	page, err := queryPage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	from, to, err := queryRange(c)
	if err != nil {
		respondError(c, err)
		return
	}
	memberID, err := queryUint(c, "memberId")
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.svc.CheckIns.List(c.Request.Context(), gymIDFrom(c), repository.CheckInFilter{
		Page:     page,
		From:     from,
		To:       to,
		Status:   c.Query("status"),
		MemberID: memberID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res)
}

func (h *Handlers) ListInside(c *gin.Context) {
	items, err := h.svc.CheckIns.Inside(c.Request.Context(), gymIDFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, items)
}
