package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/service"
)

// Routes under /api/v1/app act on the member identified by the token.

func (h *Handlers) AppMe(c *gin.Context) {
	user, err := h.svc.Users.Get(c.Request.Context(), claimsFrom(c).Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handlers) AppUpdateMe(c *gin.Context) {
	var input service.UpdateProfileDTO
	if !bindJSON(c, &input) {
		return
	}
	user, err := h.svc.Users.UpdateProfile(c.Request.Context(), claimsFrom(c).Subject, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handlers) AppMemberships(c *gin.Context) {
	members, err := h.svc.Members.ForUser(c.Request.Context(), claimsFrom(c).Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, members)
}

func (h *Handlers) AppMembershipQR(c *gin.Context) {
	id, ok := paramID(c, "memberId")
	if !ok {
		return
	}
	qr, err := h.svc.Members.QR(c.Request.Context(), claimsFrom(c).Subject, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, qr)
}

// AppClasses lists upcoming scheduled classes at the member's gyms, or at one of them
// when gymId is given.
func (h *Handlers) AppClasses(c *gin.Context) {
	ctx := c.Request.Context()
	f, err := classFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	gymID, err := queryUint(c, "gymId")
	if err != nil {
		respondError(c, err)
		return
	}

	members, err := h.svc.Members.ForUser(ctx, claimsFrom(c).Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	var gymIDs []uint
	for _, m := range members {
		if gymID == 0 || m.GymID == gymID {
			gymIDs = append(gymIDs, m.GymID)
		}
	}
	if gymID != 0 && len(gymIDs) == 0 {
		forbid(c, "you are not a member of this gym")
		return
	}

	if f.From == nil {
		now := time.Now().UTC()
		f.From = &now
	}
	if f.Status == "" {
		f.Status = models.ClassStatusScheduled
	}
	res, err := h.svc.Classes.ListForGyms(ctx, gymIDs, f)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res)
}

func (h *Handlers) AppBook(c *gin.Context) {
	id, ok := paramID(c, "classId")
	if !ok {
		return
	}
	booking, err := h.svc.Bookings.BookForUser(c.Request.Context(), claimsFrom(c).Subject, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *Handlers) AppBookings(c *gin.Context) {
	page, err := queryPage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.svc.Bookings.ListForUser(c.Request.Context(), claimsFrom(c).Subject, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res)
}

func (h *Handlers) AppCancelBooking(c *gin.Context) {
	id, ok := paramID(c, "bookingId")
	if !ok {
		return
	}
	booking, err := h.svc.Bookings.CancelForUser(c.Request.Context(), claimsFrom(c).Subject, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *Handlers) AppCheckIns(c *gin.Context) {
	page, err := queryPage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.svc.CheckIns.UserHistory(c.Request.Context(), claimsFrom(c).Subject, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res)
}

func (h *Handlers) AppTelegramLinkCode(c *gin.Context) {
	code, err := h.svc.Users.IssueTelegramLinkCode(c.Request.Context(), claimsFrom(c).Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, code)
}
