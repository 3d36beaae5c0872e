package main

import (
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"finjar/docs"
	"finjar/internal/auth"
	"finjar/internal/cache"
	"finjar/internal/config"
	"finjar/internal/db"
	"finjar/internal/handler"
	"finjar/internal/model"
	"finjar/internal/repository"
	"finjar/internal/router"
	"finjar/internal/service"
)

// @title FinJar API
// @version 1.0
// @description Personal savings tracker: jars with deposits, bearer-token authentication, and a ledger that keeps every jar balance equal to the sum of its deposits.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	cfg := config.Load()

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.JarActivity{},
			&model.Deposit{},
			&model.Jar{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Jar{},
		&model.Deposit{},
		&model.JarActivity{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	repos := repository.NewRepos(gormDB)
	txManager := repository.NewTxManager(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiryMS)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(repos.Users, jwtService, tokenStore)
	jarService := service.NewJarService(repos.Jars, txManager, cacheClient)
	depositService := service.NewDepositService(repos.Deposits, txManager, cacheClient)
	activityService := service.NewActivityService(repos.Activities)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService)
	jarHandler := handler.NewJarHandler(jarService, activityService)
	depositHandler := handler.NewDepositHandler(depositService)

	// Register routes
	router.Register(
		e,
		cfg,
		repos.Users,
		tokenStore,
		authHandler,
		userHandler,
		jarHandler,
		depositHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
