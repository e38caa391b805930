package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/smartserve/config"
	"github.com/yeremiapane/smartserve/kds"
	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/queue"
	"github.com/yeremiapane/smartserve/router"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

func main() {
	createSuperuser := flag.Bool("createsuperuser", false, "create a superuser from SUPERUSER_* environment variables and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	utils.InitLoggerWithLevel(cfg.LogLevel)
	utils.SetJWTSecret(cfg.SecretKey)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	} else if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	if *createSuperuser {
		users := services.NewUserService(db, cfg.PasswordSimilarity)
		u, created, err := users.EnsureSuperuser(context.Background(),
			os.Getenv("SUPERUSER_EMPLOYEE_ID"),
			os.Getenv("SUPERUSER_FIRST_NAME"),
			os.Getenv("SUPERUSER_LAST_NAME"),
			os.Getenv("SUPERUSER_PASSWORD"))
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to create superuser: %v", err)
		}
		if created {
			utils.InfoLogger.Printf("Superuser created: %s", u.String())
		} else {
			utils.InfoLogger.Printf("Superuser %s already exists", u.EmployeeID)
		}
		return
	}

	publishers := queue.MultiPublisher{kds.Publisher{}}
	if cfg.RabbitMQURL != "" {
		rabbit := queue.NewRabbitPublisher(cfg.RabbitMQURL)
		defer rabbit.Close()
		publishers = append(publishers, rabbit)
	}

	rdb := config.NewRedisClient(cfg)
	if cfg.CacheEnabled && rdb == nil {
		utils.ErrorLogger.Println("Redis unavailable, menu cache disabled")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	authSvc := services.NewAuthService(db, cfg.TokenTTL, cfg.TokenRefreshInterval)
	monitor := services.NewTokenMonitor(authSvc)
	monitor.Start()
	defer monitor.Stop()

	r := router.SetupRouter(db, cfg, router.Options{
		Publisher:   publishers,
		Redis:       rdb,
		AuthService: authSvc,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.InfoLogger.Println("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Printf("Server shutdown: %v", err)
	}
}
