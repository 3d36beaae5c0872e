package main

import (
	"context"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finjar/internal/auth"
	"finjar/internal/cache"
	"finjar/internal/config"
	"finjar/internal/db"
	"finjar/internal/model"
	"finjar/internal/repository"
	"finjar/internal/service"
)

// seedJar is one demo jar with its deposits.
type seedJar struct {
	name        string
	target      float64
	description string
	deposits    []float64
}

var demoJars = []seedJar{
	{name: "Emergency Fund", target: 1000, description: "Save for emergencies", deposits: []float64{250, 150}},
	{name: "Trip", target: 2500, description: "Summer trip", deposits: []float64{400}},
	{name: "New Laptop", target: 1800, description: "", deposits: nil},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Jar{},
		&model.Deposit{},
		&model.JarActivity{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	repos := repository.NewRepos(gormDB)
	txManager := repository.NewTxManager(gormDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiryMS)
	tokenStore := auth.NewTokenStore(cacheClient)
	authService := service.NewAuthService(repos.Users, jwtService, tokenStore)
	jarService := service.NewJarService(repos.Jars, txManager, cacheClient)
	depositService := service.NewDepositService(repos.Deposits, txManager, cacheClient)

	ctx := context.Background()

	user, err := repos.Users.FindByEmail(ctx, "demo@finjar.local")
	if err == gorm.ErrRecordNotFound {
		user, _, err = authService.Register(ctx, "demo@finjar.local", "Demo User", "password123")
		if err != nil {
			log.Fatalf("Failed to create demo user: %v", err)
		}
		log.Printf("Created demo user %s", user.Email)
	} else if err != nil {
		log.Fatalf("Failed to look up demo user: %v", err)
	} else {
		log.Printf("Demo user %s already present, reseeding jars", user.Email)
	}

	existing, err := jarService.ListJars(ctx, user)
	if err != nil {
		log.Fatalf("Failed to list jars: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("Demo user already has %d jars, nothing to do", len(existing))
		return
	}

	// Deposits go through the ledger so every seeded balance stays consistent.
	for _, sj := range demoJars {
		jar, err := jarService.CreateJar(ctx, user, sj.name, decimal.NewFromFloat(sj.target), sj.description)
		if err != nil {
			log.Fatalf("Failed to create jar %q: %v", sj.name, err)
		}
		for _, amount := range sj.deposits {
			if _, err := depositService.AddDeposit(ctx, user, jar.ID, decimal.NewFromFloat(amount), "seed deposit"); err != nil {
				log.Fatalf("Failed to add deposit to %q: %v", sj.name, err)
			}
		}
		log.Printf("Seeded jar %q with %d deposits", sj.name, len(sj.deposits))
	}

	log.Println("Seed completed successfully!")
}
