package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/falconilham/gym-nexus-sub000/internal/service"
)

// Handlers holds the services behind every route.
type Handlers struct {
	svc Services
}

func NewHandlers(svc Services) *Handlers {
	return &Handlers{svc: svc}
}

func (h *Handlers) AdminLogin(c *gin.Context) {
	var input service.LoginDTO
	if !bindJSON(c, &input) {
		return
	}
	session, err := h.svc.Admins.Login(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"admin":     session.Account,
	})
}

func (h *Handlers) AdminMe(c *gin.Context) {
	admin, err := h.svc.Admins.Get(c.Request.Context(), claimsFrom(c).Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, admin)
}

func (h *Handlers) MemberRegister(c *gin.Context) {
	var input service.RegisterUserDTO
	if !bindJSON(c, &input) {
		return
	}
	session, err := h.svc.Users.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"user":      session.Account,
	})
}

func (h *Handlers) MemberLogin(c *gin.Context) {
	var input service.LoginDTO
	if !bindJSON(c, &input) {
		return
	}
	session, err := h.svc.Users.Login(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"user":      session.Account,
	})
}

func (h *Handlers) Health(c *gin.Context) {
	if h.svc.Health != nil {
		if err := h.svc.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
