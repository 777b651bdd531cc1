package utils

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"task-manager/config"
)

// CloudinaryMirror keeps a copy of every avatar at avatars/<user id>.
type CloudinaryMirror struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryMirror(cfg config.CloudinaryConfig) (*CloudinaryMirror, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryMirror{cld: cld}, nil
}

func avatarPublicID(userID uuid.UUID) string {
	return "avatars/" + userID.String()
}

func (c *CloudinaryMirror) Upload(ctx context.Context, userID uuid.UUID, png []byte) error {
	_, err := c.cld.Upload.Upload(ctx, bytes.NewReader(png), uploader.UploadParams{
		PublicID:  avatarPublicID(userID),
		Overwrite: api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("cloudinary upload: %w", err)
	}
	return nil
}

func (c *CloudinaryMirror) Remove(ctx context.Context, userID uuid.UUID) error {
	if _, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: avatarPublicID(userID)}); err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}
