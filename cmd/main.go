package main

import (
	"log"

	"photo-service/internal/auth"
	"photo-service/internal/config"
	"photo-service/internal/handlers"
	"photo-service/internal/models"
	"photo-service/internal/repository"
	"photo-service/internal/services"
	"photo-service/internal/storage"
	"photo-service/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func main() {
	cfg := InitConfig()
	db := ConnectDatabase(cfg)
	MigrateDatabase(db)
	store := InitObjectStore(cfg)

	photoRepo := repository.NewPhotoRepository(db)
	userRepo := repository.NewUserRepository(db)
	urlCache := services.NewURLCache(cfg.PresignTTL)
	metrics := utils.NewMetrics()
	photoService := services.NewPhotoService(
		photoRepo, userRepo, store, urlCache, metrics,
		cfg.PresignTTL, cfg.ThumbnailMaxWidth, cfg.ThumbnailMaxHeight,
	)

	app := fiber.New(fiber.Config{
		BodyLimit: 64 * 1024 * 1024,
	})

	//Register Prometheus metrics endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Set up routes for photo CRUD operations
	h := handlers.NewPhotoHandler(photoService)
	uh := handlers.NewUserHandler(photoService)
	required := auth.RequireAuth(cfg.JWTSecret)
	optional := auth.OptionalAuth(cfg.JWTSecret)

	api := app.Group("/api")
	api.Get("/photos", optional, h.ListPhotos)
	api.Get("/photos/:id", optional, h.GetPhoto)
	api.Post("/photos/upload", required, h.UploadPhoto)
	api.Post("/photos/upload-archive", required, h.UploadArchive)
	api.Patch("/photos/:id", required, h.UpdatePhoto)
	api.Delete("/photos/:id", required, h.DeletePhoto)
	api.Delete("/users/me", required, uh.DeleteAccount)

	api.Get("/swagger/*", swagger.HandlerDefault)

	// Add Health check endpoint
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	routes := app.GetRoutes()
	log.Println("Registered routes:")
	for _, r := range routes {
		log.Printf("  %s %s\n", r.Method, r.Path)
	}

	// Start the Fiber server
	port := cfg.AppPort
	if port == "" {
		port = "8080"
		log.Printf("Defaulting to port %s", port)
	}
	log.Printf("Server listening on port %s", port)
	log.Fatal(app.Listen(":" + port))
}

func InitConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	return cfg
}

func ConnectDatabase(cfg *config.Config) *gorm.DB {
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	return db
}

func MigrateDatabase(db *gorm.DB) {
	err := db.AutoMigrate(&models.User{}, &models.Photo{})
	if err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
}

func InitObjectStore(cfg *config.Config) *storage.MinioStore {
	internalClient, err := storage.NewMinioClient(cfg)
	if err != nil {
		log.Fatalf("MinIO client initialization failed: %v", err)
	}
	publicClient, err := storage.NewPublicMinioClient(cfg)
	if err != nil {
		log.Fatalf("MinIO public client initialization failed: %v", err)
	}
	return storage.NewMinioStore(internalClient, publicClient, cfg.MinioBucket)
}
