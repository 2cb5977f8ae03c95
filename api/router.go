package api

import (
	"github.com/beka-birhanu/vinom-labyrinth/api/i"
	"github.com/gin-gonic/gin"
)

// Router manages the HTTP server and its dependencies,
// including controllers and JWT authentication.
type Router struct {
	addr                    string
	baseURL                 string
	ginMode                 string
	controllers             []i.Controller
	authorizationMiddleware gin.HandlerFunc
}

// Config holds configuration settings for creating a new Router instance.
type Config struct {
	Addr                    string // Address to listen on
	BaseURL                 string // Base URL for API routes
	GinMode                 string // gin.ReleaseMode, gin.DebugMode or gin.TestMode; empty keeps gin's default
	Controllers             []i.Controller
	AuthorizationMiddleware gin.HandlerFunc
}

// NewRouter creates a new Router instance with the given configuration.
func NewRouter(config Config) *Router {
	return &Router{
		addr:                    config.Addr,
		baseURL:                 config.BaseURL,
		ginMode:                 config.GinMode,
		controllers:             config.Controllers,
		authorizationMiddleware: config.AuthorizationMiddleware,
	}
}

// Addr returns the listen address.
func (r *Router) Addr() string {
	return r.addr
}

// Handler builds the gin engine with all routes registered.
//
// Routes are grouped and managed under the base URL, with the following access levels:
// - Public routes: No authentication required.
// - Protected routes: Authentication required.
func (r *Router) Handler() *gin.Engine {
	if r.ginMode != "" {
		gin.SetMode(r.ginMode)
	}
	gin.ForceConsoleColor()
	router := gin.Default()

	// Setting up routes under baseURL
	api := router.Group(r.baseURL)

	{
		// Public routes (accessible without authentication)
		publicRoutes := api.Group("/v1")
		{
			for _, c := range r.controllers {
				c.RegisterPublic(publicRoutes)
			}
		}

		// Protected routes (authentication required)
		protectedRoutes := api.Group("/v1")
		protectedRoutes.Use(r.authorizationMiddleware)
		{
			for _, c := range r.controllers {
				c.RegisterProtected(protectedRoutes)
			}
		}
	}

	return router
}
