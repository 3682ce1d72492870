package routes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/4dave/corralio/config"
	"github.com/4dave/corralio/handlers"
	"github.com/4dave/corralio/middleware"
	"github.com/4dave/corralio/services"
	"github.com/4dave/corralio/store"
	"github.com/4dave/corralio/utils"
	"github.com/4dave/corralio/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// App bundles the services one router serves.
type App struct {
	Config   *config.Config
	Store    store.Store
	Auth     *services.AuthService
	Access   *services.AccessService
	Events   *services.EventService
	Invites  *services.InviteService
	Comments *services.CommentService
	Admin    *services.AdminService
	WS       *handlers.WSHandler
}

// NewApp wires every service on top of s.
func NewApp(cfg *config.Config, s store.Store, mailer services.Mailer) (*App, error) {
	auth, err := services.NewAuthService(s, mailer, cfg.Secret())
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	access, err := services.NewAccessService(cfg.Secret())
	if err != nil {
		return nil, fmt.Errorf("access: %w", err)
	}

	events := services.NewEventService(s)
	ws := handlers.NewWSHandler(events, access)

	return &App{
		Config: cfg,
		Store:  s,
		Auth:   auth,
		Access: access,
		Events: events,
		Invites: services.NewInviteService(services.InviteServiceConfig{
			Store:  s,
			Mailer: mailer,
			Access: access,
			AppURL: cfg.AppURL,
			Demo:   cfg.Demo,
		}),
		Comments: services.NewCommentService(s, ws),
		Admin:    services.NewAdminService(s, cfg.AdminEmails),
		WS:       ws,
	}, nil
}

// NewRouter builds the gin engine. Background work stops when ctx ends.
func NewRouter(ctx context.Context, app *App) (*gin.Engine, error) {
	templates, err := web.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}

	router := gin.New()
	if err := router.SetTrustedProxies(app.Config.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	router.HTMLRender = templates
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	limiter := middleware.NewRateLimiter(100, 20)
	go limiter.Run(ctx.Done())
	router.Use(limiter.Middleware())
	router.Use(middleware.Session(app.Auth))

	signInLimiter := middleware.NewRateLimiter(5, 3)
	go signInLimiter.Run(ctx.Done())

	demo := app.Config.Demo
	pages := &handlers.EventHandler{
		Events:   app.Events,
		Invites:  app.Invites,
		Comments: app.Comments,
		Access:   app.Access,
		Demo:     demo,
	}
	invites := &handlers.InvitationHandler{Invites: app.Invites, Pages: pages, Demo: demo}
	comments := &handlers.CommentHandler{Comments: app.Comments, Pages: pages, Demo: demo}
	auth := &handlers.AuthHandler{Auth: app.Auth, Demo: demo}
	admin := &handlers.AdminHandler{Admin: app.Admin, Demo: demo}

	SetupPageRoutes(router, pages, invites, comments)
	SetupAuthRoutes(router.Group("/auth"), auth, signInLimiter)
	SetupAdminRoutes(router, admin)
	router.GET("/ws/e/:shareToken", app.WS.HandleWS)

	api := router.Group("/api")
	api.Use(cors.New(cors.Config{
		AllowOrigins:     app.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	SetupAPIRoutes(api, app, pages, invites, comments, auth, admin, signInLimiter)

	router.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if err := app.Store.Ping(c.Request.Context()); err != nil {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status": status,
			"demo":   demo,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	router.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "not_found.html", gin.H{"User": middleware.GetIdentity(c), "Demo": demo})
	})

	return router, nil
}

// SetupPageRoutes registers the server-rendered pages and their forms.
func SetupPageRoutes(r *gin.Engine, pages *handlers.EventHandler, invites *handlers.InvitationHandler, comments *handlers.CommentHandler) {
	r.GET("/", pages.Home)
	r.GET("/new", pages.NewEventPage)
	r.POST("/new", pages.CreateEvent)

	r.GET("/e/:shareToken", pages.ShowEvent)
	r.GET("/e/:shareToken/event.ics", pages.Calendar)
	r.POST("/e/:shareToken/comments", comments.PostComment)
	r.POST("/e/:shareToken/invites", invites.SendInvites)

	r.GET("/i/:inviteToken", invites.InvitePage)
	r.POST("/i/:inviteToken", invites.Respond)
}

func SetupAuthRoutes(rg *gin.RouterGroup, auth *handlers.AuthHandler, limiter *middleware.RateLimiter) {
	rg.GET("/signin", auth.SignInPage)
	rg.POST("/signin", limiter.Middleware(), auth.SignIn)
	rg.GET("/verify", auth.VerifyPage)
	rg.POST("/verify", limiter.Middleware(), auth.Verify)
	rg.POST("/signout", auth.SignOut)
}

func SetupAdminRoutes(r *gin.Engine, admin *handlers.AdminHandler) {
	r.GET("/events", admin.ListEvents)
	r.POST("/events/:id/:action", admin.EventAction)
}

func SetupAPIRoutes(
	rg *gin.RouterGroup,
	app *App,
	pages *handlers.EventHandler,
	invites *handlers.InvitationHandler,
	comments *handlers.CommentHandler,
	auth *handlers.AuthHandler,
	admin *handlers.AdminHandler,
	limiter *middleware.RateLimiter,
) {
	rg.POST("/auth/signin", limiter.Middleware(), auth.SignInJSON)
	rg.POST("/auth/verify", limiter.Middleware(), auth.VerifyJSON)

	rg.GET("/events/:shareToken", pages.GetJSON)
	rg.GET("/events/:shareToken/comments", pages.CommentsJSON)
	rg.POST("/invites/:inviteToken/respond", invites.RespondJSON)

	protected := rg.Group("/")
	protected.Use(middleware.RequireUser())
	{
		user := &handlers.UserHandler{Store: app.Store}
		protected.GET("/me", user.GetProfile)
		protected.GET("/events", pages.ListMine)
		protected.POST("/events", pages.CreateJSON)
		protected.POST("/events/:shareToken/invites", invites.SendInvitesJSON)
		protected.POST("/comments", comments.PostCommentJSON)
		protected.GET("/admin/events", admin.ListEventsJSON)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		utils.SafeDebug("📨 %s %s from %s", c.Request.Method, utils.MaskPath(c.Request.URL.Path), c.ClientIP())
		c.Next()
		utils.LogAPIRequest(c.Request.Method, c.Request.URL.Path, middleware.GetUserID(c), c.Writer.Status(), time.Since(start).String())
	}
}
