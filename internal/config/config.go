package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config holds all configuration values from environment.
type Config struct {
	AppPort    string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// MinioEndpoint is the server-side endpoint used for writes and deletes.
	// MinioPublicEndpoint is the endpoint baked into presigned URLs and must
	// be resolvable by clients outside the deployment; the two differ whenever
	// the object store's internal hostname is not routable from the outside.
	MinioEndpoint       string
	MinioPublicEndpoint string
	MinioAccessKey      string
	MinioSecretKey      string
	MinioBucket         string
	MinioSSL            bool

	JWTSecret string

	// Presign settings
	PresignTTL time.Duration // Lifetime of capability URLs (default: 3h)

	// Thumbnail settings
	ThumbnailMaxWidth  int // Maximum thumbnail width in pixels (default: 300)
	ThumbnailMaxHeight int // Maximum thumbnail height in pixels (default: 300)
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	minioSSL := false
	if sslEnv := os.Getenv("MINIO_SSL"); sslEnv != "" {
		val, err := strconv.ParseBool(sslEnv)
		if err != nil {
			return nil, fmt.Errorf("invalid MINIO_SSL value: %v", err)
		}
		minioSSL = val
	}
	presignTTL := 3 * time.Hour // default value
	if ttlEnv := os.Getenv("PRESIGN_TTL"); ttlEnv != "" {
		val, err := time.ParseDuration(ttlEnv)
		if err == nil && val > 0 {
			presignTTL = val
		}
	}
	thumbMaxWidth := 300
	if widthEnv := os.Getenv("THUMBNAIL_MAX_WIDTH"); widthEnv != "" {
		val, err := strconv.Atoi(widthEnv)
		if err == nil && val > 0 {
			thumbMaxWidth = val
		}
	}
	thumbMaxHeight := 300
	if heightEnv := os.Getenv("THUMBNAIL_MAX_HEIGHT"); heightEnv != "" {
		val, err := strconv.Atoi(heightEnv)
		if err == nil && val > 0 {
			thumbMaxHeight = val
		}
	}
	cfg := &Config{
		AppPort:             os.Getenv("PHOTO_PORT"),
		DBHost:              os.Getenv("DB_HOST"),
		DBPort:              os.Getenv("DB_PORT"),
		DBUser:              os.Getenv("DB_USER"),
		DBPassword:          os.Getenv("DB_PASSWORD"),
		DBName:              os.Getenv("DB_NAME"),
		MinioEndpoint:       os.Getenv("MINIO_ENDPOINT"),
		MinioPublicEndpoint: os.Getenv("MINIO_PUBLIC_ENDPOINT"),
		MinioAccessKey:      os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:      os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:         os.Getenv("MINIO_BUCKET"),
		MinioSSL:            minioSSL,
		JWTSecret:           os.Getenv("JWT_SECRET"),

		PresignTTL:         presignTTL,
		ThumbnailMaxWidth:  thumbMaxWidth,
		ThumbnailMaxHeight: thumbMaxHeight,
	}
	// Basic validation for required fields
	if cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("database configuration is incomplete")
	}
	if cfg.MinioEndpoint == "" || cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" || cfg.MinioBucket == "" {
		return nil, fmt.Errorf("minio configuration is incomplete")
	}
	if cfg.MinioPublicEndpoint == "" {
		cfg.MinioPublicEndpoint = cfg.MinioEndpoint
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	return cfg, nil
}

// ConnectDatabase initializes a GORM database connection to PostgreSQL.
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	return db, nil
}
