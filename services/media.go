package services

import (
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/alphabatem/common/context"
	"github.com/famquest/famquest_api/dto"
	"github.com/famquest/famquest_api/shared"
	log "github.com/sirupsen/logrus"
)

// MediaService stores badge icons and reward images in object storage and
// writes the resulting URL back onto the owning row.
type MediaService struct {
	context.DefaultService
	sqlSvc   *PostgresService
	minioSvc *MinIOService
	baseURL  string
}

const MEDIA_SVC = "media_svc"

func (svc MediaService) Id() string {
	return MEDIA_SVC
}

func (svc *MediaService) Configure(ctx *context.Context) error {
	svc.baseURL = os.Getenv("BASE_URL")
	if svc.baseURL == "" {
		svc.baseURL = "http://localhost:8000"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *MediaService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.minioSvc = svc.Service(MINIO_SVC).(*MinIOService)
	return nil
}

// ==================== MEDIA UPLOAD METHODS ====================

func (svc *MediaService) UploadBadgeIcon(achievementID string, file *multipart.FileHeader) (*dto.MediaUploadResponse, error) {
	if !svc.isValidImageFile(file.Filename) {
		return nil, shared.NewBadRequestError(nil, "Invalid image file format. Supported: JPG, PNG, WEBP")
	}

	if file.Size > 2*1024*1024 {
		return nil, shared.NewBadRequestError(nil, "Badge icon too large. Maximum size: 2MB")
	}

	if _, err := svc.sqlSvc.Achievements().GetDefinition(achievementID); err != nil {
		return nil, shared.NewNotFoundError(err, "Achievement not found")
	}

	objectKey := BadgeIconKey(achievementID, filepath.Ext(file.Filename))
	resp, err := svc.storeImage(file, objectKey)
	if err != nil {
		return nil, err
	}

	if err := svc.sqlSvc.Achievements().UpdateDefinition(achievementID, map[string]interface{}{"icon": resp.URL}); err != nil {
		svc.minioSvc.RemoveMedia(objectKey)
		return nil, shared.NewInternalError(err, "Failed to attach badge icon")
	}

	return resp, nil
}

func (svc *MediaService) UploadRewardImage(familyID, rewardID string, file *multipart.FileHeader) (*dto.MediaUploadResponse, error) {
	if !svc.isValidImageFile(file.Filename) {
		return nil, shared.NewBadRequestError(nil, "Invalid image file format. Supported: JPG, PNG, WEBP")
	}

	if file.Size > 5*1024*1024 {
		return nil, shared.NewBadRequestError(nil, "Reward image too large. Maximum size: 5MB")
	}

	reward, err := svc.sqlSvc.Rewards().GetReward(rewardID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Reward not found")
	}
	if reward.FamilyID != familyID {
		return nil, shared.NewForbiddenError(nil, "Reward belongs to another family")
	}

	objectKey := RewardImageKey(rewardID, filepath.Ext(file.Filename))
	resp, err := svc.storeImage(file, objectKey)
	if err != nil {
		return nil, err
	}

	if err := svc.sqlSvc.Rewards().UpdateReward(rewardID, map[string]interface{}{"image_url": resp.URL}); err != nil {
		svc.minioSvc.RemoveMedia(objectKey)
		return nil, shared.NewInternalError(err, "Failed to attach reward image")
	}

	return resp, nil
}

func (svc *MediaService) storeImage(file *multipart.FileHeader, objectKey string) (*dto.MediaUploadResponse, error) {
	src, err := file.Open()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to open uploaded file")
	}
	defer src.Close()

	if err := svc.minioSvc.PutMedia(objectKey, src, file.Size, file.Header.Get("Content-Type")); err != nil {
		return nil, shared.NewInternalError(err, "Failed to upload file to storage")
	}

	// Presigned URL with a plain bucket URL as fallback
	fileURL, err := svc.minioSvc.MediaURL(objectKey)
	if err != nil {
		log.Printf("Failed to generate presigned URL: %v", err)
		fileURL = svc.minioSvc.PublicURL(svc.baseURL, objectKey)
	}

	log.Printf("Stored media object: %s", objectKey)

	return &dto.MediaUploadResponse{
		URL:      fileURL,
		FileName: path.Base(objectKey),
		FileSize: file.Size,
	}, nil
}

// ==================== FILE VALIDATION METHODS ====================

func (svc *MediaService) isValidImageFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	validExts := []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

	for _, validExt := range validExts {
		if ext == validExt {
			return true
		}
	}
	return false
}
