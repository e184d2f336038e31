package service

import (
	"ImageHosting/internal/dto"
	"ImageHosting/internal/storage"
	"ImageHosting/model"
	"ImageHosting/utils"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"math"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/context"
)

const uploadTimeFormat = "2006-01-02 15:04:05"

// allowedFormats are the formats image.Decode may report for an upload
// to be accepted.
var allowedFormats = map[string]bool{
	"jpeg": true,
	"gif":  true,
	"png":  true,
}

// ImageService coordinates the blob store and the metadata store. Both
// are injected, so tests run against fakes.
type ImageService struct {
	store    ImageStore
	blobs    storage.Store
	cache    utils.Cache
	cacheTTL time.Duration
}

// NewImageService builds the service. cache may be nil; listings then
// always hit the metadata store.
func NewImageService(store ImageStore, blobs storage.Store, cache utils.Cache, cacheTTL time.Duration) *ImageService {
	return &ImageService{
		store:    store,
		blobs:    blobs,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// splitIdentifier separates "stem.ext" into stem and extension. The
// extension keeps its leading dot and may be empty.
func splitIdentifier(id string) (stem, ext string) {
	ext = filepath.Ext(id)
	return strings.TrimSuffix(id, ext), ext
}

// Upload validates the payload and, only after validation passed, writes
// the blob and upserts the metadata record. The MD5 of the payload is
// both the dedup key and the stored filename stem.
func (s *ImageService) Upload(ctx context.Context, payload []byte, declaredFilename string) (*dto.UploadResult, error) {
	stem, ext := splitIdentifier(filepath.Base(declaredFilename))
	ext = strings.ToLower(ext)
	if ext == "" {
		return nil, fmt.Errorf("filename %q has no extension: %w", declaredFilename, ErrUnsupportedFormat)
	}

	sum := md5.Sum(payload)
	hash := hex.EncodeToString(sum[:])

	_, format, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", ErrUnsupportedFormat)
	}
	if !allowedFormats[format] {
		return nil, fmt.Errorf("format %q: %w", format, ErrUnsupportedFormat)
	}

	name := hash + ext
	created, err := s.blobs.Put(ctx, name, bytes.NewReader(payload), int64(len(payload)), mime.TypeByExtension(ext))
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	sizeKB := int(math.Round(float64(len(payload)) / 1024.0))
	record := &model.Image{
		ContentHash:      hash,
		OriginalFilename: stem,
		SizeKB:           sizeKB,
		FileType:         ext,
		UploadTime:       time.Now(),
	}
	if err := s.store.Insert(ctx, record); err != nil {
		if created {
			if rmErr := s.blobs.Remove(ctx, name); rmErr != nil {
				log.Printf("roll back blob %s failed: %v", name, rmErr)
			}
		}
		return nil, fmt.Errorf("insert record: %w", err)
	}

	if err := utils.InvalidateImageListCache(ctx, s.cache); err != nil {
		log.Printf("invalidate list cache failed: %v", err)
	}

	return &dto.UploadResult{
		Filename: name,
		Location: "/images/" + name,
		Size:     sizeKB,
	}, nil
}

// ListPage returns one gallery page, most recent upload first. Pages
// below 1 are clamped to 1.
func (s *ImageService) ListPage(ctx context.Context, page, limit int) ([]dto.ImageInfo, error) {
	if page < 1 {
		page = 1
	}

	if cached, ok := utils.GetImageListFromCache(ctx, s.cache, limit, page); ok {
		return cached.Images, nil
	}

	offset := (page - 1) * limit
	records, err := s.store.PageByRecency(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query page: %w", err)
	}

	images := make([]dto.ImageInfo, 0, len(records))
	for _, rec := range records {
		images = append(images, dto.ImageInfo{
			Filename:         rec.ContentHash,
			OriginalFilename: rec.OriginalFilename,
			Size:             rec.SizeKB,
			UploadDate:       rec.UploadTime.Format(uploadTimeFormat),
			FileType:         rec.FileType,
		})
	}

	if err := utils.SetImageListToCache(ctx, s.cache, limit, page, &utils.ImageListCache{Images: images}, s.cacheTTL); err != nil {
		log.Printf("cache list page failed: %v", err)
	}
	return images, nil
}

// Delete removes the metadata record and then the blob for "stem.ext".
// The metadata delete is unconditional; the blob is only removed when
// the existence check succeeds, otherwise the identifier is reported as
// not found. Outcomes per (record, blob) presence: both -> removed,
// record only -> not found, blob only -> removed, neither -> not found.
func (s *ImageService) Delete(ctx context.Context, id string) error {
	stem, ext := splitIdentifier(id)
	if stem == "" {
		return fmt.Errorf("identifier %q: %w", id, ErrNotFound)
	}

	if _, err := s.store.Delete(ctx, stem, ext); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	exists, err := s.blobs.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check blob: %w", err)
	}
	if !exists {
		return fmt.Errorf("blob %q: %w", id, ErrNotFound)
	}
	if err := s.blobs.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove blob: %w", err)
	}

	if err := utils.InvalidateImageListCache(ctx, s.cache); err != nil {
		log.Printf("invalidate list cache failed: %v", err)
	}
	return nil
}

// Open streams a stored image for serving, with its content type derived
// from the extension.
func (s *ImageService) Open(ctx context.Context, name string) (io.ReadCloser, storage.ObjectInfo, string, error) {
	rc, info, err := s.blobs.Open(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
			return nil, storage.ObjectInfo{}, "", fmt.Errorf("image %q: %w", name, ErrNotFound)
		}
		return nil, storage.ObjectInfo{}, "", err
	}
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return rc, info, contentType, nil
}
