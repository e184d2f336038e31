package handler

import (
	"ImageHosting/config"
	"ImageHosting/internal/dto"
	"ImageHosting/internal/service"
	"ImageHosting/utils"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	gridPageSize = 9
	listPageSize = 10
)

type ImageHandler struct {
	svc *service.ImageService
}

// NewImageHandler wires the handlers to a service instance.
func NewImageHandler(svc *service.ImageService) *ImageHandler {
	return &ImageHandler{svc: svc}
}

// respondError maps service errors onto HTTP statuses. Store failures
// are logged and still surfaced as 500s.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnsupportedFormat):
		utils.Fail(c, http.StatusBadRequest, err)
	case errors.Is(err, service.ErrNotFound):
		utils.Fail(c, http.StatusNotFound, err)
	default:
		log.Printf("request failed: %v", err)
		utils.Fail(c, http.StatusInternalServerError, err)
	}
}

// Upload accepts raw image bytes with the declared name in the Filename
// header and exactly Content-Length bytes in the body.
func (h *ImageHandler) Upload(c *gin.Context) {
	length := c.Request.ContentLength
	if length <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing content length"})
		return
	}
	if max := config.AppConfig.UploadMaxBytes; max > 0 && length > max {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		return
	}
	declared := c.GetHeader("Filename")
	if declared == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing Filename header"})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, length))
	if err != nil || int64(len(payload)) != length {
		c.JSON(http.StatusBadRequest, gin.H{"error": "short body"})
		return
	}

	result, err := h.svc.Upload(c.Request.Context(), payload, declared)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Location", result.Location)
	c.Header("Filename", utils.SanitizeHeaderFilename(result.Filename))
	utils.Success(c, result)
}

// pageParam reads ?page=N, defaulting to 1.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (h *ImageHandler) listPage(c *gin.Context, limit int) {
	images, err := h.svc.ListPage(c.Request.Context(), pageParam(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListImagesResponse{Images: images})
}

// ListGrid serves the 9-per-page grid view listing.
func (h *ImageHandler) ListGrid(c *gin.Context) {
	h.listPage(c, gridPageSize)
}

// ListTable serves the 10-per-page table view listing.
func (h *ImageHandler) ListTable(c *gin.Context) {
	h.listPage(c, listPageSize)
}

// Delete removes an image by its "stem.ext" identifier.
func (h *ImageHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Deleted", utils.SanitizeHeaderFilename(id))
	utils.Success(c, gin.H{"deleted": id})
}

// Serve streams a stored image by its full blob name.
func (h *ImageHandler) Serve(c *gin.Context) {
	rc, info, contentType, err := h.svc.Open(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, info.Size, contentType, rc, nil)
}
