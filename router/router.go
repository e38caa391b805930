package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/smartserve/config"
	"github.com/yeremiapane/smartserve/controllers"
	"github.com/yeremiapane/smartserve/middlewares"
	"github.com/yeremiapane/smartserve/queue"
	"github.com/yeremiapane/smartserve/services"
	"gorm.io/gorm"
)

const menuCachePrefix = "smartserve:menu-items"

// Options carries the optional infrastructure of the router. Zero values
// disable the matching feature.
type Options struct {
	Publisher    queue.Publisher
	Redis        *redis.Client
	ImageFetcher services.ImageFetcher
	// AuthService replaces the one built from cfg, for callers that also
	// need it outside the router.
	AuthService *services.AuthService
}

func SetupRouter(db *gorm.DB, cfg *config.Config, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if len(cfg.AllowedHosts) > 0 {
		_ = r.SetTrustedProxies(cfg.AllowedHosts)
	}

	r.Use(middlewares.SecurityHeaders(cfg.Production))
	r.Use(middlewares.CORSMiddlewares(cfg.AllowedOrigins))
	r.Use(middlewares.LoggerMiddleware())

	publisher := opts.Publisher
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	authSvc := opts.AuthService
	if authSvc == nil {
		authSvc = services.NewAuthService(db, cfg.TokenTTL, cfg.TokenRefreshInterval)
	}
	employeeSvc := services.NewEmployeeService(db, cfg.EmployeeNamePolicy)
	pageSize := cfg.PaginationSize

	authCtrl := controllers.NewAuthController(authSvc)
	userCtrl := controllers.NewUserController(services.NewUserService(db, cfg.PasswordSimilarity), employeeSvc, pageSize)
	restaurantCtrl := controllers.NewRestaurantController(services.NewRestaurantService(db), employeeSvc, pageSize)
	tableCtrl := controllers.NewTableController(services.NewTableService(db, publisher), pageSize)
	seatCtrl := controllers.NewSeatController(services.NewSeatService(db), pageSize)
	bookingCtrl := controllers.NewBookingController(services.NewBookingService(db, publisher), pageSize)
	seatBookingCtrl := controllers.NewSeatBookingController(services.NewSeatBookingService(db, publisher), pageSize)
	menuCtrl := controllers.NewMenuController(services.NewMenuItemService(db), pageSize)
	orderCtrl := controllers.NewOrderController(services.NewOrderService(db, publisher), pageSize)
	faceCtrl := controllers.NewFaceController(services.NewFaceService(db, opts.ImageFetcher), pageSize)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	public := r.Group("/api/auth")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/login", authCtrl.Login)
	}

	r.GET("/ws/kitchen", middlewares.WebSocketAuthMiddleware(authSvc), controllers.NewKDSHandler(cfg.AllowedOrigins))

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware(authSvc))
	staff := middlewares.RequireStaff()
	menuCache := middlewares.InvalidateCache(opts.Redis, menuCachePrefix)

	api.POST("/auth/logout", authCtrl.Logout)
	api.POST("/auth/logoutall", authCtrl.LogoutAll)
	api.GET("/auth/me", authCtrl.Me)

	// USERS
	api.GET("/users", userCtrl.GetAllUsers)
	api.GET("/users/:id", userCtrl.GetUserByID)
	api.POST("/users", staff, userCtrl.CreateUser)
	api.PUT("/users/:id", staff, userCtrl.UpdateUser)
	api.DELETE("/users/:id", staff, userCtrl.DeleteUser)
	api.PUT("/users/:id/password", userCtrl.SetPassword)
	api.PUT("/users/:id/restaurants", staff, userCtrl.SetRestaurants)

	// RESTAURANTS
	api.GET("/restaurants", restaurantCtrl.GetAllRestaurants)
	api.GET("/restaurants/:id", restaurantCtrl.GetRestaurantByID)
	api.POST("/restaurants", staff, restaurantCtrl.CreateRestaurant)
	api.PUT("/restaurants/:id", staff, restaurantCtrl.UpdateRestaurant)
	api.DELETE("/restaurants/:id", staff, menuCache, restaurantCtrl.DeleteRestaurant)
	api.GET("/restaurants/:id/tables", restaurantCtrl.GetTables)
	api.GET("/restaurants/:id/employees", restaurantCtrl.GetEmployees)
	api.POST("/restaurants/:id/employees", staff, restaurantCtrl.AddEmployees)
	api.DELETE("/restaurants/:id/employees/:user_id", staff, restaurantCtrl.RemoveEmployee)

	// TABLES
	api.GET("/tables", tableCtrl.GetAllTables)
	api.GET("/tables/:id", tableCtrl.GetTableByID)
	api.POST("/tables", staff, tableCtrl.CreateTable)
	api.PUT("/tables/:id", staff, tableCtrl.UpdateTable)
	api.DELETE("/tables/:id", staff, tableCtrl.DeleteTable)
	api.GET("/tables/:id/seats", tableCtrl.GetSeats)
	api.GET("/tables/:id/bookings", tableCtrl.GetBookings)
	api.POST("/tables/:id/bookings", tableCtrl.CreateBooking)

	// SEATS
	api.GET("/seats", seatCtrl.GetAllSeats)
	api.GET("/seats/:id", seatCtrl.GetSeatByID)
	api.POST("/seats", staff, seatCtrl.CreateSeat)
	api.PUT("/seats/:id", staff, seatCtrl.UpdateSeat)
	api.DELETE("/seats/:id", staff, seatCtrl.DeleteSeat)

	// BOOKINGS
	api.GET("/bookings", bookingCtrl.GetAllBookings)
	api.GET("/bookings/:id", bookingCtrl.GetBookingByID)
	api.POST("/bookings", bookingCtrl.CreateBooking)
	api.PUT("/bookings/:id", bookingCtrl.UpdateBooking)
	api.DELETE("/bookings/:id", bookingCtrl.DeleteBooking)
	api.GET("/bookings/:id/tables", bookingCtrl.GetTables)
	api.GET("/bookings/:id/orders", bookingCtrl.GetOrders)
	api.GET("/bookings/:id/restaurant", bookingCtrl.GetRestaurant)

	// SEAT BOOKINGS
	api.GET("/seat-bookings", seatBookingCtrl.GetAllSeatBookings)
	api.GET("/seat-bookings/:id", seatBookingCtrl.GetSeatBookingByID)
	api.POST("/seat-bookings", seatBookingCtrl.CreateSeatBooking)
	api.PUT("/seat-bookings/:id", seatBookingCtrl.UpdateSeatBooking)
	api.DELETE("/seat-bookings/:id", seatBookingCtrl.DeleteSeatBooking)

	// MENU ITEMS
	if cfg.CacheEnabled {
		api.GET("/menu-items", middlewares.ResponseCache(opts.Redis, menuCachePrefix, cfg.CacheTTL), menuCtrl.GetAllMenuItems)
	} else {
		api.GET("/menu-items", menuCtrl.GetAllMenuItems)
	}
	api.GET("/menu-items/:id", menuCtrl.GetMenuItemByID)
	api.POST("/menu-items", staff, menuCache, menuCtrl.CreateMenuItem)
	api.PUT("/menu-items/:id", staff, menuCache, menuCtrl.UpdateMenuItem)
	api.DELETE("/menu-items/:id", staff, menuCache, menuCtrl.DeleteMenuItem)
	api.PUT("/menu-items/:id/restaurants/:restaurant_id", staff, menuCache, menuCtrl.SetAvailability)
	api.DELETE("/menu-items/:id/restaurants/:restaurant_id", staff, menuCache, menuCtrl.SetAvailability)

	// ORDERS
	api.GET("/orders", orderCtrl.GetAllOrders)
	api.GET("/orders/:id", orderCtrl.GetOrderByID)
	api.POST("/orders", orderCtrl.CreateOrder)
	api.PUT("/orders/:id", orderCtrl.UpdateOrder)
	api.DELETE("/orders/:id", orderCtrl.DeleteOrder)

	// FACES
	api.GET("/faces", faceCtrl.GetAllFaces)
	api.GET("/faces/:id", faceCtrl.GetFaceByID)
	api.POST("/faces", staff, faceCtrl.CreateFace)
	api.PUT("/faces/:id", staff, faceCtrl.UpdateFace)
	api.DELETE("/faces/:id", staff, faceCtrl.DeleteFace)

	return r
}
