package http

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cosmetics-store/internal/domain"
	"cosmetics-store/internal/repository"
	"cosmetics-store/internal/service"
	"cosmetics-store/internal/storage"
)

const (
	maxImageSize   = 5 << 20 // 5MB per file, matches the storefront limit
	maxImagesPerOp = 5
	imageURLTTL    = 15 * time.Minute
)

// productRequest is bound from multipart form fields so image files can
// ride along in the same request.
type productRequest struct {
	Name          string   `form:"name" binding:"required"`
	Description   string   `form:"description"`
	Price         string   `form:"price" binding:"required"`
	DiscountPrice string   `form:"discountPrice"`
	CategoryID    int64    `form:"categoryId"`
	Brand         string   `form:"brand"`
	StockQuantity int64    `form:"stockQuantity"`
	SKU           string   `form:"sku"`
	Featured      bool     `form:"featured"`
	Status        string   `form:"status"`
	RemoveImages  []string `form:"removeImages"`
}

type productResponse struct {
	ID            int64            `json:"id"`
	CategoryID    *int64           `json:"categoryId,omitempty"`
	CategoryName  string           `json:"categoryName,omitempty"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Brand         string           `json:"brand,omitempty"`
	StockQuantity int64            `json:"stockQuantity"`
	SKU           string           `json:"sku,omitempty"`
	Images        []string         `json:"images"`
	Featured      bool             `json:"featured"`
	Status        string           `json:"status"`
	CreatedAt     string           `json:"createdAt"`
}

func (h *Handler) productToResponse(c *gin.Context, product domain.Product) productResponse {
	images := h.imageURLs(c, product.Images)
	return productResponse{
		ID:            product.ID,
		CategoryID:    product.CategoryID,
		CategoryName:  product.CategoryName,
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price,
		DiscountPrice: product.DiscountPrice,
		Brand:         product.Brand,
		StockQuantity: product.StockQuantity,
		SKU:           product.SKU,
		Images:        images,
		Featured:      product.Featured,
		Status:        string(product.Status),
		CreatedAt:     timeRFC3339(product.CreatedAt),
	}
}

// imageURLs resolves stored object keys to download URLs. Without configured
// storage the raw keys pass through unchanged.
func (h *Handler) imageURLs(c *gin.Context, keys []string) []string {
	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		if h.storage == nil || h.bucket == "" {
			urls = append(urls, key)
			continue
		}
		url, err := h.storage.GetObjectURL(c.Request.Context(), h.bucket, key, imageURLTTL)
		if err != nil {
			h.logger.WithError(err).WithField("key", key).Warn("resolve image url")
			urls = append(urls, key)
			continue
		}
		urls = append(urls, url)
	}
	return urls
}

func (h *Handler) listProducts(c *gin.Context) {
	var filter repository.ProductFilter

	if v := c.Query("category"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, codeValidation, "invalid category filter")
			return
		}
		filter.CategoryID = id
	}
	if v := c.Query("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, codeValidation, "invalid featured filter")
			return
		}
		filter.Featured = &featured
	}
	filter.Search = c.Query("search")
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			respondError(c, http.StatusBadRequest, codeValidation, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i := range products {
		resp[i] = h.productToResponse(c, products[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.productToResponse(c, *product))
}

func (h *Handler) createProduct(c *gin.Context) {
	input, ok := h.bindProductInput(c, nil)
	if !ok {
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), *input)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "product created successfully",
		"product": h.productToResponse(c, *product),
	})
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	// inactive products stay editable so a soft delete can be undone
	existing, err := h.catalog.GetProductAnyStatus(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	input, ok := h.bindProductInput(c, existing.Images)
	if !ok {
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), id, *input)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "product updated successfully",
		"product": h.productToResponse(c, *product),
	})
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.catalog.DeactivateProduct(c.Request.Context(), id); err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted successfully"})
}

type createCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	resp := make([]gin.H, len(categories))
	for i, category := range categories {
		resp[i] = gin.H{
			"id":          category.ID,
			"name":        category.Name,
			"description": category.Description,
			"status":      category.Status,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "category created successfully",
		"categoryId": category.ID,
	})
}

// bindProductInput parses the multipart form into a ProductInput, uploading
// any attached image files to object storage first.
func (h *Handler) bindProductInput(c *gin.Context, existingImages []string) (*service.ProductInput, bool) {
	var req productRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		return nil, false
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid price")
		return nil, false
	}

	var discount *decimal.Decimal
	if req.DiscountPrice != "" {
		d, err := decimal.NewFromString(req.DiscountPrice)
		if err != nil {
			respondError(c, http.StatusBadRequest, codeValidation, "invalid discount price")
			return nil, false
		}
		discount = &d
	}

	var categoryID *int64
	if req.CategoryID > 0 {
		categoryID = &req.CategoryID
	}

	images := h.removeImages(c, existingImages, req.RemoveImages)
	if form, err := c.MultipartForm(); err == nil && form != nil {
		uploaded, err := h.uploadImages(c, form.File["images"])
		if err != nil {
			respondError(c, http.StatusBadRequest, codeValidation, err.Error())
			return nil, false
		}
		images = append(images, uploaded...)
	}

	return &service.ProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         price,
		DiscountPrice: discount,
		CategoryID:    categoryID,
		Brand:         req.Brand,
		StockQuantity: req.StockQuantity,
		SKU:           req.SKU,
		Images:        images,
		Featured:      req.Featured,
		Status:        domain.ProductStatus(req.Status),
	}, true
}

// removeImages drops the requested keys from the product's image list and
// deletes the underlying objects. A failed remote delete only logs; the key
// is gone from the product either way.
func (h *Handler) removeImages(c *gin.Context, existing, remove []string) []string {
	kept := append([]string(nil), existing...)
	if len(remove) == 0 {
		return kept
	}

	drop := make(map[string]bool, len(remove))
	for _, key := range remove {
		drop[key] = true
	}

	kept = kept[:0]
	for _, key := range existing {
		if !drop[key] {
			kept = append(kept, key)
			continue
		}
		if h.storage == nil || h.bucket == "" {
			continue
		}
		if err := h.storage.Delete(c.Request.Context(), h.bucket, key); err != nil {
			h.logger.WithError(err).WithField("key", key).Warn("delete product image")
		}
	}
	return kept
}

func (h *Handler) uploadImages(c *gin.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if h.storage == nil || h.bucket == "" {
		return nil, fmt.Errorf("image storage is not configured")
	}
	if len(files) > maxImagesPerOp {
		return nil, fmt.Errorf("at most %d images per request", maxImagesPerOp)
	}

	var keys []string
	for _, file := range files {
		if file.Size > maxImageSize {
			return nil, fmt.Errorf("image %s exceeds the %dMB limit", file.Filename, maxImageSize>>20)
		}
		ext := strings.ToLower(filepath.Ext(file.Filename))
		switch ext {
		case ".jpg", ".jpeg", ".png", ".gif":
		default:
			return nil, fmt.Errorf("only image files are allowed")
		}
		switch file.Header.Get("Content-Type") {
		case "image/jpeg", "image/jpg", "image/png", "image/gif":
		default:
			return nil, fmt.Errorf("only image files are allowed")
		}

		src, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %s: %w", file.Filename, err)
		}

		key := fmt.Sprintf("%s/product-%d-%s%s",
			strings.Trim(h.keyPrefix, "/"), time.Now().UnixMilli(), uuid.NewString()[:8], ext)
		stored, err := h.storage.Upload(c.Request.Context(), storage.UploadInput{
			Bucket:      h.bucket,
			Key:         key,
			ContentType: file.Header.Get("Content-Type"),
			Body:        src,
		})
		closeErr := src.Close()
		if err != nil {
			h.logger.WithError(err).WithField("file", file.Filename).Error("upload product image")
			return nil, fmt.Errorf("image upload failed")
		}
		if closeErr != nil {
			return nil, fmt.Errorf("close upload %s: %w", file.Filename, closeErr)
		}
		keys = append(keys, stored)
	}
	return keys, nil
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid id")
		return 0, false
	}
	return id, true
}
