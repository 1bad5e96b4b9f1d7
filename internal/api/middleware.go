package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/falconilham/gym-nexus-sub000/internal/auth"
	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/service"
	"github.com/falconilham/gym-nexus-sub000/pkg/utils"
)

const (
	claimsKey = "claims"
	gymIDKey  = "gymID"
)

// AuthMiddleware validates the bearer token, stores the claims on the gin context and
// the actor on the request context.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(claimsKey, claims)
		actorType := models.ActorAdmin
		if claims.Kind == auth.KindMember {
			actorType = models.ActorMember
		}
		ctx := service.WithActor(c.Request.Context(), service.Actor{Type: actorType, ID: claims.Subject})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func gymIDFrom(c *gin.Context) uint {
	return c.GetUint(gymIDKey)
}

func forbid(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msg})
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := claimsFrom(c); claims == nil || claims.Kind != auth.KindAdmin {
			forbid(c, "admin account required")
			return
		}
		c.Next()
	}
}

func RequireMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := claimsFrom(c); claims == nil || claims.Kind != auth.KindMember {
			forbid(c, "member account required")
			return
		}
		c.Next()
	}
}

func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !claimsFrom(c).IsSuperAdmin() {
			forbid(c, "super admin required")
			return
		}
		c.Next()
	}
}

// RequireManager rejects staff accounts.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil || claims.Kind != auth.KindAdmin || claims.Role == models.RoleStaff {
			forbid(c, "staff accounts cannot perform this action")
			return
		}
		c.Next()
	}
}

// RequireGymAccess resolves :gymId and checks the admin may act on it.
func RequireGymAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("gymId"), 10, 32)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid gymId"})
			return
		}
		if !claimsFrom(c).CanAccessGym(uint(id)) {
			forbid(c, "no access to this gym")
			return
		}
		c.Set(gymIDKey, uint(id))
		c.Next()
	}
}

// CORSMiddleware allows the configured origins; "*" allows any origin without credentials.
// Requests from other origins are rejected with 403.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch {
		case o == "*":
			cfg.AllowAllOrigins = true
		case strings.HasPrefix(o, "http://") || strings.HasPrefix(o, "https://"):
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		case o != "":
			utils.Log.Warnf("cors: ignoring origin %q without http(s) scheme", o)
		}
	}
	if cfg.AllowAllOrigins {
		cfg.AllowOrigins = nil
	} else if len(cfg.AllowOrigins) == 0 {
		return func(c *gin.Context) { c.Next() }
	} else {
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
