// Package assets is the seam to the asset-storage collaborator. The
// messaging core hands it a validated image payload and gets back a hosted
// URL to record on the message.
package assets

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Uploader stores an image given as a base64 data URI and returns its
// public URL.
type Uploader interface {
	Upload(ctx context.Context, dataURI string) (string, error)
}

// CloudinaryUploader stores images in Cloudinary.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret, folder string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init failed: %w", err)
	}
	return &CloudinaryUploader{cld: cld, folder: folder}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, dataURI string) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, dataURI, uploader.UploadParams{
		Folder: u.folder,
	})
	if err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	return resp.SecureURL, nil
}
