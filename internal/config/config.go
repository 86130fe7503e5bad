package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// R2 / S3 object storage for avatars.
	R2AccountID       string `mapstructure:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `mapstructure:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `mapstructure:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `mapstructure:"R2_BUCKET_NAME"`
	R2PublicURL       string `mapstructure:"R2_PUBLIC_URL"` // Custom domain

	// Game tuning. Two collect radii shipped in old mobile builds (15m and
	// 20m); 20m is canonical, both stay configurable.
	CollectRadiusMeters      float64 `mapstructure:"COLLECT_RADIUS_METERS"`
	NotificationRadiusMeters float64 `mapstructure:"NOTIFICATION_RADIUS_METERS"`
	GeofenceRadiusMeters     float64 `mapstructure:"GEOFENCE_RADIUS_METERS"`
	LoiterDelaySeconds       int     `mapstructure:"LOITER_DELAY_SECONDS"`
}

var AppConfig *Config

func LoadConfig() {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("FRONTEND_URL", "http://localhost:5173")
	viper.SetDefault("COLLECT_RADIUS_METERS", 20.0)
	viper.SetDefault("NOTIFICATION_RADIUS_METERS", 100.0)
	viper.SetDefault("GEOFENCE_RADIUS_METERS", 100.0)
	viper.SetDefault("LOITER_DELAY_SECONDS", 30)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}
}

// CollectRadius returns the collect radius, falling back to the canonical
// 20m when config has not been loaded (unit tests).
func CollectRadius() float64 {
	if AppConfig == nil || AppConfig.CollectRadiusMeters <= 0 {
		return 20.0
	}
	return AppConfig.CollectRadiusMeters
}

// NotificationRadius returns the proximity-notification radius (100m canonical).
func NotificationRadius() float64 {
	if AppConfig == nil || AppConfig.NotificationRadiusMeters <= 0 {
		return 100.0
	}
	return AppConfig.NotificationRadiusMeters
}
