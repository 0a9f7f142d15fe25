package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	appcontext "github.com/alphabatem/common/context"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// Media object keys are namespaced per kind so bucket policies and cleanup
// jobs can target badge icons and reward images separately.
const (
	badgeIconPrefix   = "badges"
	rewardImagePrefix = "rewards"

	mediaURLTTL = 24 * time.Hour
)

// MinIOService owns the single media bucket holding achievement badge icons
// and reward store images.
type MinIOService struct {
	appcontext.DefaultService
	client    *minio.Client
	bucket    string
	endpoint  string
	accessKey string
	secretKey string
	useSSL    bool
}

const MINIO_SVC = "minio_svc"

func (svc MinIOService) Id() string {
	return MINIO_SVC
}

func (svc *MinIOService) Configure(ctx *appcontext.Context) error {
	svc.endpoint = os.Getenv("MINIO_ENDPOINT")
	if svc.endpoint == "" {
		svc.endpoint = "localhost:9000"
	}

	svc.accessKey = os.Getenv("MINIO_ACCESS_KEY")
	if svc.accessKey == "" {
		svc.accessKey = "admin"
	}

	svc.secretKey = os.Getenv("MINIO_SECRET_KEY")
	if svc.secretKey == "" {
		svc.secretKey = "password123"
	}

	svc.useSSL = os.Getenv("MINIO_USE_SSL") == "true"

	svc.bucket = os.Getenv("MINIO_BUCKET_NAME")
	if svc.bucket == "" {
		svc.bucket = "famquest-media"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *MinIOService) Start() error {
	client, err := minio.New(svc.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(svc.accessKey, svc.secretKey, ""),
		Secure: svc.useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %v", err)
	}

	svc.client = client

	if err := svc.ensureBucket(); err != nil {
		return fmt.Errorf("failed to ensure media bucket exists: %v", err)
	}

	log.Printf("MinIO service started successfully with endpoint: %s", svc.endpoint)
	return nil
}

func (svc *MinIOService) ensureBucket() error {
	ctx := context.Background()

	exists, err := svc.client.BucketExists(ctx, svc.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = svc.client.MakeBucket(ctx, svc.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("Created media bucket: %s", svc.bucket)
	}

	return nil
}

// BadgeIconKey builds the object key for an achievement's badge icon. The
// timestamp keeps a re-upload from colliding while already issued URLs keep
// resolving against the old object.
func BadgeIconKey(achievementID, ext string) string {
	return fmt.Sprintf("%s/%s_%d%s", badgeIconPrefix, achievementID, time.Now().Unix(), ext)
}

// RewardImageKey builds the object key for a reward store image.
func RewardImageKey(rewardID, ext string) string {
	return fmt.Sprintf("%s/%s_%d%s", rewardImagePrefix, rewardID, time.Now().Unix(), ext)
}

// PutMedia streams one image into the media bucket under objectKey.
func (svc *MinIOService) PutMedia(objectKey string, reader io.Reader, size int64, contentType string) error {
	_, err := svc.client.PutObject(context.Background(), svc.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to store %s: %v", objectKey, err)
	}
	return nil
}

// MediaURL returns a presigned link to objectKey, valid for mediaURLTTL.
func (svc *MinIOService) MediaURL(objectKey string) (string, error) {
	presignedURL, err := svc.client.PresignedGetObject(context.Background(), svc.bucket, objectKey, mediaURLTTL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %v", err)
	}

	return presignedURL.String(), nil
}

// PublicURL is the unsigned fallback used when presigning is unavailable.
func (svc *MinIOService) PublicURL(baseURL, objectKey string) string {
	return fmt.Sprintf("%s/%s/%s", baseURL, svc.bucket, objectKey)
}

// RemoveMedia deletes objectKey, used to roll back an upload whose owning row
// could not be updated.
func (svc *MinIOService) RemoveMedia(objectKey string) error {
	err := svc.client.RemoveObject(context.Background(), svc.bucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %v", objectKey, err)
	}

	return nil
}
