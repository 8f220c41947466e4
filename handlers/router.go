package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scavhunt/scavhunt/backend/pkg/middleware"
)

// Deps are the collaborators NewRouter wires into routes.
type Deps struct {
	Verifier    middleware.TokenVerifier
	Revocations middleware.RevocationChecker // optional
	RateLimit   gin.HandlerFunc              // optional, runs after authentication
	Me          *MeHandler
	Ready       map[string]ReadyCheck
}

// NewRouter builds the HTTP surface of the backend.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), cors())

	RegisterHealth(r, d.Ready)
	RegisterSwagger(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(d.Verifier, d.Revocations))
	if d.RateLimit != nil {
		api.Use(d.RateLimit)
	}
	d.Me.Register(api)
	return r
}

// Lightweight CORS middleware: set common headers and respond to OPTIONS.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}
