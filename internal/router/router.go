package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/psds-microservice/helpy/paths"
	"github.com/psds-microservice/support-console/api"
	"github.com/psds-microservice/support-console/internal/handler"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Health     *handler.HealthHandler
	Session    *handler.SessionHandler
	Tickets    *handler.TicketHandler
	Users      *handler.UserHandler
	Moderation *handler.ModerationHandler
	Events     *handler.EventsHandler
}

func New(h Handlers, allowedOrigins []string) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET(paths.PathHealth, h.Health.Health)
	r.GET(paths.PathReady, h.Health.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET(paths.PathSwagger, func(c *gin.Context) { c.Redirect(http.StatusFound, paths.PathSwagger+"/") })
	r.GET(paths.PathSwagger+"/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = paths.PathSwagger + "/index.html"
			c.Request.RequestURI = paths.PathSwagger + "/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(paths.PathSwagger+"/openapi.json"))(c)
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/session/login", h.Session.Login)
		v1.DELETE("/session", h.Session.Logout)
		v1.GET("/session", h.Session.Get)

		v1.GET("/tickets", h.Tickets.List)
		v1.GET("/tickets/:id", h.Tickets.Get)
		v1.POST("/tickets/:id/open", h.Tickets.Open)
		v1.POST("/tickets/:id/messages", h.Tickets.SendMessage)
		v1.PUT("/tickets/:id/reply", h.Tickets.Reply)
		v1.PUT("/tickets/:id/status", h.Tickets.SetStatus)
		v1.GET("/tickets/:id/draft", h.Tickets.GetDraft)
		v1.PUT("/tickets/:id/draft", h.Tickets.PutDraft)
		v1.GET("/selection", h.Tickets.Selection)
		v1.DELETE("/selection", h.Tickets.CloseSelection)

		v1.GET("/users", h.Users.List)
		v1.POST("/users/refresh", h.Users.Refresh)
		v1.POST("/users/:id/toggle-admin", h.Users.ToggleAdmin)
		v1.POST("/users/:id/suspend", h.Users.Suspend)
		v1.POST("/users/:id/unsuspend", h.Users.Unsuspend)
		v1.POST("/users/:id/credits", h.Users.AdjustCredits)

		m := h.Moderation
		v1.GET("/posts", m.Posts)
		v1.POST("/posts/refresh", m.RefreshPosts)
		v1.POST("/posts/:id/toggle-hidden", m.TogglePostHidden)
		v1.POST("/posts/:id/toggle-pinned", m.TogglePostPinned)
		v1.DELETE("/posts/:id", m.DeletePost)
		v1.GET("/reports", m.PostReports)
		v1.POST("/reports/refresh", m.RefreshPostReports)
		v1.POST("/reports/:id/resolve", m.ResolvePostReport)
		v1.GET("/user-reports", m.UserReports)
		v1.POST("/user-reports/refresh", m.RefreshUserReports)
		v1.POST("/user-reports/:id/resolve", m.ResolveUserReport)
		v1.GET("/reviews", m.Reviews)
		v1.POST("/reviews/refresh", m.RefreshReviews)
		v1.DELETE("/reviews/:id", m.DeleteReview)
		v1.GET("/checkins", m.CheckIns)
		v1.POST("/checkins/refresh", m.RefreshCheckIns)
		v1.DELETE("/checkins/:id", m.DeleteCheckIn)
		v1.GET("/places", m.Places)
		v1.POST("/places/refresh", m.RefreshPlaces)
		v1.POST("/places/:id/toggle-active", m.TogglePlaceActive)

		v1.GET("/events", h.Events.Stream)
	}

	return r
}
