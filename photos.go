package main

import (
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mechlog/pkg/attendance"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
)

const (
	photoField     = "photo"
	photoURLPrefix = "/uploads/"
	maxPhotoBytes  = 10 << 20
	shrinkAbove    = 1_000_000 // stored photos are downscaled towards this size
)

var (
	errPhotoTooLarge = errors.New("photo too large (max 10MB)")
	errPhotoType     = errors.New("unsupported photo type (jpg, png, gif)")
)

// savePhoto stores the multipart photo of a check-in or check-out and
// returns its public reference. A missing photo is attendance.ErrPhotoRequired.
func savePhoto(c *gin.Context) (string, error) {
	file, err := c.FormFile(photoField)
	if err != nil || file.Size == 0 {
		return "", attendance.ErrPhotoRequired
	}
	if file.Size > maxPhotoBytes {
		return "", errPhotoTooLarge
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	if !isSupportedExt(ext) {
		return "", errPhotoType
	}

	base := uploadBaseDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		return "", fmt.Errorf("mkdir uploads: %w", err)
	}
	name := fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.Int63n(1e9), ext)
	full := filepath.Join(base, name)
	if err := c.SaveUploadedFile(file, full); err != nil {
		return "", fmt.Errorf("save photo: %w", err)
	}
	if err := shrinkPhoto(full, shrinkAbove); err != nil {
		log.Printf("photo %s kept at original size: %v", name, err)
	}
	return photoURLPrefix + name, nil
}

// discardPhoto removes a stored photo whose operation was not applied.
func discardPhoto(ref string) {
	if ref == "" {
		return
	}
	full := filepath.Join(uploadBaseDir(), filepath.Base(strings.TrimPrefix(ref, photoURLPrefix)))
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to remove unused photo %s: %v", full, err)
	}
}

func isSupportedExt(ext string) bool {
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}

// shrinkPhoto downscales the image at path in place until it is roughly
// under maxBytes. Files that cannot be decoded are left untouched.
func shrinkPhoto(path string, maxBytes int64) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.Size() <= maxBytes {
		return nil
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	// size roughly scales with area
	scale := math.Sqrt(float64(maxBytes) / float64(fi.Size()))
	if scale > 0.95 {
		scale = 0.95
	}
	if scale < 0.1 {
		scale = 0.1
	}
	w := int(math.Max(1, math.Round(float64(img.Bounds().Dx())*scale)))
	h := int(math.Max(1, math.Round(float64(img.Bounds().Dy())*scale)))
	img = imaging.Resize(img, w, h, imaging.Lanczos)
	if err := imaging.Save(img, path, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	// one more uniform 80% pass if still too big
	if fi2, err := os.Stat(path); err == nil && fi2.Size() > maxBytes {
		img = imaging.Resize(img, int(float64(w)*0.8), 0, imaging.Lanczos)
		if err := imaging.Save(img, path, imaging.JPEGQuality(85)); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	}
	return nil
}
