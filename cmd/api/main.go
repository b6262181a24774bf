package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sagarpathak0/pharma-res/internal/config"
	"github.com/sagarpathak0/pharma-res/internal/database"
	"github.com/sagarpathak0/pharma-res/internal/handlers"
	"github.com/sagarpathak0/pharma-res/internal/middleware"
	"github.com/sagarpathak0/pharma-res/internal/services"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Pharmacy Results API
// @version 1.0
// @description Student results upload, search and correction service
// @host localhost:8080
// @BasePath /
func main() {
	if len(os.Args) > 1 {
		handleCommand(os.Args[1])
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if cfg.Server.Env == "development" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	if cfg.Monitoring.PrometheusEnabled {
		r.Use(middleware.Metrics())
	}

	// CORS
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		allowedOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Health check - simple endpoint that doesn't require DB
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK", "message": "Server is healthy"})
	})
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Welcome to the Pharmacy Results API"})
	})

	// Metrics
	if cfg.Monitoring.PrometheusEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Grading rules: stored policy overrides the config defaults
	rules := services.NewPolicyService(db).Load(cfg.Policy)

	// Services
	ingestService := services.NewIngestService(db)
	resultService := services.NewResultService(db, rules)

	// Handlers
	resultHandler := handlers.NewResultHandler(ingestService, resultService)
	studentHandler := handlers.NewStudentHandler(resultService)

	// Routes
	api := r.Group("/api")
	{
		api.POST("/results", resultHandler.Upload)
		api.POST("/results/search", resultHandler.Search)
		api.PUT("/results/regular", resultHandler.UpdateRegular)
		api.PUT("/results/reappear", resultHandler.UpdateReappear)

		api.GET("/students", studentHandler.List)
		api.GET("/students/search", studentHandler.Search)
		api.PUT("/students/:rollNo/:campus", studentHandler.UpdateCampus)
		api.GET("/academic-years/:rollNo", studentHandler.AcademicYears)
	}

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func handleCommand(cmd string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	switch cmd {
	case "migrate":
		if err := database.Migrate(db); err != nil {
			log.Fatal("Migration failed:", err)
		}
		log.Println("Migration completed successfully")

	case "seed-policy":
		if err := services.NewPolicyService(db).Seed(cfg.Policy); err != nil {
			log.Fatal("Failed to seed grading policy:", err)
		}
		log.Println("Default grading policy seeded")

	default:
		log.Printf("Unknown command: %s", cmd)
	}
}
