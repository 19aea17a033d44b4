package routes

import (
	"time"

	"salonpos-backend/config"
	"salonpos-backend/controllers"
	"salonpos-backend/models"
	"salonpos-backend/services"
	"salonpos-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies is everything the router needs from main.
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger
	Tokens *utils.TokenManager

	Auth       *services.AuthService
	Users      *services.UserService
	Shops      *services.ShopService
	Clients    *services.ClientService
	Treatments *services.TreatmentService
	Orders     *services.OrderService
	Dashboard  *services.DashboardService
	Hub        *services.RealtimeHub
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(config.RequestLogger(deps.Logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.Origins(),
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authController := controllers.NewAuthController(deps.Auth, controllers.NewCookiePolicy(deps.Config), deps.Logger)
	orderController := controllers.NewOrderController(deps.Orders, deps.Logger)
	clientController := controllers.NewClientController(deps.Clients, deps.Logger)
	treatmentController := controllers.NewTreatmentController(deps.Treatments, deps.Logger)
	userController := controllers.NewUserController(deps.Users, deps.Logger)
	shopController := controllers.NewShopController(deps.Shops, deps.Logger)
	dashboardController := controllers.NewDashboardController(deps.Dashboard, deps.Logger)
	eventsController := controllers.NewEventsController(deps.Hub, deps.Logger)

	requireAuth := utils.AuthMiddleware(deps.Tokens)

	auth := r.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.Refresh)
		auth.POST("/logout", authController.Logout)
		auth.GET("/me", requireAuth, authController.Me)
	}

	r.GET("/events", requireAuth, eventsController.Stream)

	orders := r.Group("/orders", requireAuth)
	{
		orders.POST("", orderController.Create)
		orders.GET("", orderController.List)
		orders.GET("/active", orderController.Pending(models.OrderCreated))
		orders.GET("/completed", orderController.Pending(models.OrderCompleted))
		orders.GET("/summary/daily", orderController.DailySummary)
		orders.GET("/:id", orderController.Get)
		orders.PATCH("/:id", orderController.Update)
		orders.PATCH("/:id/complete", orderController.Complete)
		orders.POST("/:id/cancel", orderController.Cancel)
		orders.PATCH("/:id/restore", orderController.Restore)
		orders.POST("/:id/send-receipt", orderController.SendReceipt)
	}

	clients := r.Group("/clients", requireAuth)
	{
		clients.GET("", clientController.List)
		clients.GET("/all", clientController.All)
		clients.GET("/dni/:dni", clientController.ByDNI)
	}

	treatments := r.Group("/treatments", requireAuth)
	{
		treatments.GET("/all", treatmentController.All)
		catalog := treatments.Group("", utils.RequireRoles(models.RoleAdmin, models.RoleManager))
		catalog.POST("", treatmentController.Create)
		catalog.PATCH("/:id", treatmentController.Update)
	}

	users := r.Group("/users", requireAuth)
	{
		users.POST("/create", userController.Create)
		users.GET("/me", userController.Me)
		users.GET("/stylists", userController.ByRole(models.RoleStylist))
		users.GET("/managers", userController.ByRole(models.RoleManager))
		users.GET("/operators", userController.ByRole(models.RoleOperator))
		users.GET("/cashiers", userController.ByRole(models.RoleCashier))
		users.PATCH("/:id", userController.Update)
	}

	shops := r.Group("/shops", requireAuth)
	{
		shops.POST("/create", shopController.Create)
		shops.GET("/all", shopController.All)
	}

	r.GET("/dashboard/stats", requireAuth, dashboardController.Stats)

	return r
}
