package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/services"
	"github.com/elzaeemwork/autoreply-backend/internal/storage"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const maxImageSize = 5 << 20 // 5 MiB

type ProductHandler struct {
	svc      services.ProductService
	uploader storage.Uploader
}

func NewProductHandler(svc services.ProductService, uploader storage.Uploader) *ProductHandler {
	return &ProductHandler{svc: svc, uploader: uploader}
}

type ProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       string   `json:"price" binding:"required"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

func (h *ProductHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	products, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *ProductHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProductHandler.Create", "invalid request body", err))
		return
	}

	created, err := h.svc.Create(c.Request.Context(), userID, &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Tags:        pq.StringArray(req.Tags),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *ProductHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *string  `json:"price"`
		Category    *string  `json:"category"`
		Tags        []string `json:"tags"`
		InStock     *bool    `json:"in_stock"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProductHandler.Update", "invalid request body", err))
		return
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Tags != nil {
		fields["tags"] = pq.StringArray(req.Tags)
	}
	if req.InStock != nil {
		fields["in_stock"] = *req.InStock
	}

	updated, err := h.svc.Update(c.Request.Context(), userID, c.Param("id"), fields)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadImage stores a product photo and records its URL on the product.
func (h *ProductHandler) UploadImage(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	const op = "ProductHandler.UploadImage"

	if h.uploader == nil {
		writeError(c, utils.E(utils.CodeUnavailable, op, "image storage is not configured", nil))
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "image file is required", err))
		return
	}
	if file.Size > maxImageSize {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "image exceeds 5MB limit", nil))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "unsupported image type", nil))
		return
	}

	src, err := file.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}
	defer src.Close()

	objectName := fmt.Sprintf("products/%s/%s%s", userID, uuid.NewString(), ext)
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	storedPath, err := h.uploader.Upload(c.Request.Context(), objectName, contentType, src)
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to store image", err))
		return
	}

	updated, err := h.svc.SetImage(c.Request.Context(), userID, c.Param("id"), storedPath)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
