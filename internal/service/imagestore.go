package service

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/platewise/backend/config"
)

// ImageStore persists captured food photos to S3 so saved logs can reference
// them by path. The store is optional; without it imagePath stays empty.
type ImageStore struct {
	s3Config *config.S3Config
}

// NewImageStore creates a store over an initialized S3 configuration.
func NewImageStore(s3Config *config.S3Config) *ImageStore {
	return &ImageStore{s3Config: s3Config}
}

// StoreFoodImage uploads the JPEG payload under a fresh object key and
// returns the public URL used as FoodLog.ImagePath.
func (s *ImageStore) StoreFoodImage(ctx context.Context, jpegData []byte) (string, error) {
	fileName := fmt.Sprintf("food-images/%s.jpg", uuid.New().String())

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(jpegData),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[ImageStore] uploaded food image to %s", publicURL)
	return publicURL, nil
}
