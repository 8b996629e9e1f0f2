package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"craftmart/internal/domain"
)

// @Summary Latest products
// @Tags products
// @Produce json
// @Param page query int false "Zero based page" default(0)
// @Param size query int false "Page size" default(12)
// @Success 200 {object} domain.ProductPage
// @Failure 400 {object} map[string]string
// @Router /v1/public/api/product/filter-latest [get]
func (s *Server) latestProducts(c *gin.Context) {
	page, err1 := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, err2 := strconv.Atoi(c.DefaultQuery("size", "12"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}
	p, err := s.products.Latest(c, page, size)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Filter products
// @Tags products
// @Accept json
// @Produce json
// @Param input body domain.ProductFilter true "Filter"
// @Success 200 {array} domain.Product
// @Failure 400 {object} map[string]string
// @Router /v1/public/api/product/filter [post]
func (s *Server) filterProducts(c *gin.Context) {
	var f domain.ProductFilter
	if err := c.ShouldBindJSON(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	list, err := s.products.List(c, f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Storefront products of a seller
// @Tags products
// @Produce json
// @Param id path int true "Seller ID"
// @Success 200 {array} domain.Product
// @Router /v1/public/api/product/seller-products/id/{id} [get]
func (s *Server) sellerProducts(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	list, err := s.products.BySeller(c, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Categories
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Category
// @Router /v1/api/categories/list [get]
func (s *Server) listCategories(c *gin.Context) {
	list, err := s.products.Categories(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Create or update a product
// @Tags products
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file false "Image"
// @Param product formData string true "Product JSON"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /v1/api/product/saveorupdate [post]
func (s *Server) saveProduct(c *gin.Context) {
	var p domain.Product
	if err := bindPart(c, "product", &p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	img, err := filePart(c, "file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := s.products.Save(c, currentUser(c), p, img)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// @Summary Products of the logged in seller
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Product
// @Router /v1/api/product/owner-products [get]
func (s *Server) ownerProducts(c *gin.Context) {
	list, err := s.products.BySeller(c, currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Delete a product
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} domain.Ack
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /v1/api/product/delete/id/{id} [get]
func (s *Server) deleteProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.products.Delete(c, currentUser(c), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.Ack{Status: true, Message: "product deleted"})
}

// bindPart decodes a JSON form part. Browsers send it as a blob (a file
// part), other clients as a plain value.
func bindPart(c *gin.Context, name string, v any) error {
	raw := []byte(c.PostForm(name))
	if len(raw) == 0 {
		b, err := filePart(c, name)
		if err != nil {
			return err
		}
		raw = b
	}
	if len(raw) == 0 {
		return fmt.Errorf("missing %q part", name)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid %q part: %v", name, err)
	}
	return nil
}

// filePart reads an optional file part; absent or empty gives nil
func filePart(c *gin.Context, name string) ([]byte, error) {
	fh, err := c.FormFile(name)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid multipart body: %v", err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}
	return b, nil
}
