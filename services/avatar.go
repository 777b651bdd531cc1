package services

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"task-manager/models"
)

var avatarExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
}

// AvatarProcessor turns an uploaded image into a square PNG. Images whose
// header declares more than MaxPixels pixels are refused before decoding.
type AvatarProcessor struct {
	Size      int
	MaxPixels int
}

func NewAvatarProcessor(size, maxPixels int) *AvatarProcessor {
	return &AvatarProcessor{Size: size, MaxPixels: maxPixels}
}

// CheckFilename accepts only image extensions the processor can decode.
func CheckFilename(name string) error {
	if !avatarExtensions[strings.ToLower(filepath.Ext(name))] {
		return &models.ValidationError{Message: "File extension invalid"}
	}
	return nil
}

// Process decodes r, crops it around the center to Size x Size and encodes
// the result as PNG.
func (p *AvatarProcessor) Process(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, &models.ValidationError{Message: fmt.Sprintf("Unable to read image: %v", err)}
	}
	if p.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(p.MaxPixels) {
		return nil, &models.ValidationError{Message: "Image dimensions too large"}
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &models.ValidationError{Message: fmt.Sprintf("Unable to read image: %v", err)}
	}
	img = imaging.Fill(img, p.Size, p.Size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
