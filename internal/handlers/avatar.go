package handlers

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appconfig "github.com/kareemessam09/GeoQuest/internal/config"
	"github.com/kareemessam09/GeoQuest/internal/database"
	"github.com/kareemessam09/GeoQuest/internal/models"
	"github.com/kareemessam09/GeoQuest/pkg/logger"
)

const maxAvatarBytes = 5 << 20

var avatarContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

func avatarStorageConfigured() bool {
	cfg := appconfig.AppConfig
	return cfg != nil && cfg.R2AccountID != "" && cfg.R2BucketName != ""
}

// avatarClient builds an S3 client pointed at the R2 endpoint.
func avatarClient() (*s3.Client, error) {
	cfg := appconfig.AppConfig

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID),
		}, nil
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("auto"),
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg), nil
}

// UploadAvatar stores a profile picture in object storage and points the
// player record at its public URL.
func UploadAvatar(c *gin.Context) {
	playerId := c.GetString("playerId")

	if !avatarStorageConfigured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Avatar storage is not configured"})
		return
	}

	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No avatar file provided"})
		return
	}
	defer file.Close()

	if header.Size > maxAvatarBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Avatar exceeds the 5MB limit"})
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := avatarContentTypes[ext]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar must be a JPEG, PNG, or WEBP image"})
		return
	}

	client, err := avatarClient()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to init avatar storage client")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reach avatar storage"})
		return
	}

	cfg := appconfig.AppConfig
	key := fmt.Sprintf("geoquest/avatars/%s%s", uuid.NewString(), ext)
	_, err = client.PutObject(c.Request.Context(), &s3.PutObjectInput{
		Bucket:      aws.String(cfg.R2BucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.Error().Err(err).Str("player_id", playerId).Msg("Avatar upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload avatar"})
		return
	}

	publicURL := cfg.R2PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.r2.dev", cfg.R2BucketName)
	}
	avatarURL := fmt.Sprintf("%s/%s", publicURL, key)

	if err := database.DB.Model(&models.Player{}).
		Where("id = ?", playerId).
		Update("avatar_url", avatarURL).Error; err != nil {
		logger.Error().Err(err).Str("player_id", playerId).Msg("Failed to persist avatar URL")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save avatar"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatarUrl": avatarURL})
}
