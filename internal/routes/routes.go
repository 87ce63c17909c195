package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/zaqqye/hotel_backend/internal/config"
	"github.com/zaqqye/hotel_backend/internal/controllers"
	"github.com/zaqqye/hotel_backend/internal/metrics"
	"github.com/zaqqye/hotel_backend/internal/middleware"
	"github.com/zaqqye/hotel_backend/internal/models"
	"github.com/zaqqye/hotel_backend/internal/services"
	"github.com/zaqqye/hotel_backend/internal/store"
	"github.com/zaqqye/hotel_backend/internal/validation"
	"github.com/zaqqye/hotel_backend/internal/ws"
)

// Deps are the long-lived components the router is built from. Hub and
// Metrics are optional.
type Deps struct {
	Config  *config.Config
	Store   *store.Store
	Hub     *ws.RoomHub
	Metrics *metrics.Metrics
	Log     *slog.Logger
}

// New returns a gin engine with the middleware chain and every route.
func New(d Deps) (*gin.Engine, error) {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v); err != nil {
			return nil, err
		}
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(d.Log, !d.Config.IsProduction()), middleware.Slog(d.Log))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}
	r.Use(cors.New(corsConfig(d.Config)))

	Register(r, d)
	r.NoRoute(controllers.NotFound)
	return r, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "If-None-Match", middleware.HeaderRequestID},
		ExposeHeaders: []string{"ETag", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	origins := cfg.Origins()
	if len(origins) == 1 && origins[0] == "*" {
		c.AllowAllOrigins = true
		return c
	}
	// cookies only travel to origins that were named explicitly
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

func Register(r *gin.Engine, d Deps) {
	cfg := d.Config
	if d.Log == nil {
		d.Log = slog.Default()
	}

	var notifier services.Notifier
	if d.Hub != nil {
		notifier = d.Hub
	}
	var observer services.Observer
	if d.Metrics != nil {
		observer = d.Metrics
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	tokens := services.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL())
	authSvc := services.NewAuthService(d.Store.Users, tokens)
	respond := controllers.NewResponder(d.Log, !cfg.IsProduction())

	authCtrl := &controllers.AuthController{Auth: authSvc, CookieName: cfg.CookieName, SecureCookie: cfg.IsProduction(), Responder: respond}
	roomCtrl := &controllers.RoomController{Rooms: services.NewRoomService(d.Store.Rooms, notifier, observer), Responder: respond}
	adminCtrl := &controllers.AdminController{Users: services.NewUserService(d.Store.Users), Responder: respond}

	authMW := middleware.AuthMiddleware(authSvc, cfg.CookieName, d.Log)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Hotel Booking API is running",
			"timestamp": time.Now().UTC(),
		})
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authCtrl.Register)
		auth.POST("/login", authCtrl.Login)
		auth.POST("/logout", authCtrl.Logout)
		auth.GET("/me", authMW, authCtrl.Me)
		auth.PUT("/profile", authMW, authCtrl.UpdateProfile)
	}

	rooms := api.Group("/rooms")
	{
		rooms.GET("", roomCtrl.ListRooms)
		rooms.GET("/stats", roomCtrl.Stats)
		rooms.GET("/ws", ws.RoomsHandler(d.Hub))
		rooms.GET("/:id", roomCtrl.GetRoom)

		// Admin-only
		rooms.POST("", authMW, adminOnly, roomCtrl.CreateRoom)
		rooms.PUT("/:id", authMW, adminOnly, roomCtrl.UpdateRoom)
		rooms.DELETE("/:id", authMW, adminOnly, roomCtrl.DeleteRoom)

		rooms.POST("/:id/book", authMW, roomCtrl.BookRoom)
		rooms.POST("/:id/checkout", authMW, roomCtrl.CheckoutRoom)
	}

	users := api.Group("/users", authMW, adminOnly)
	{
		users.GET("", adminCtrl.ListUsers)
		users.GET("/stats", adminCtrl.UserStats)
		users.GET("/:id", adminCtrl.GetUser)
		users.POST("", adminCtrl.CreateUser)
		users.PUT("/:id", adminCtrl.UpdateUser)
		users.DELETE("/:id", adminCtrl.DeleteUser)
	}
}
