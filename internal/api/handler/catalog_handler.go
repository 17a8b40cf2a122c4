package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deckshop/storefront/internal/core/ports"
)

type CatalogHandler struct {
	catalog ports.CatalogService
}

func NewCatalogHandler(catalog ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type createProductRequest struct {
	Name        string      `json:"name"`
	Brand       string      `json:"brand"`
	Model       string      `json:"model"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Price       numericText `json:"price" swaggertype:"number"`
	Stock       numericText `json:"stock" swaggertype:"integer"`
}

type updateProductRequest struct {
	Name        *string     `json:"name,omitempty"`
	Brand       *string     `json:"brand,omitempty"`
	Model       *string     `json:"model,omitempty"`
	Category    *string     `json:"category,omitempty"`
	Description *string     `json:"description,omitempty"`
	Image       *string     `json:"image,omitempty"`
	Price       numericText `json:"price,omitempty" swaggertype:"number"`
	Stock       numericText `json:"stock,omitempty" swaggertype:"integer"`
}

// List returns the catalog, optionally filtered and sorted.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        category   query     string  false  "Exact category (case-insensitive)"
// @Param        brand      query     string  false  "Brand substring"
// @Param        search     query     string  false  "Matches name, brand, model or category"
// @Param        min_price  query     number  false  "Inclusive lower price bound"
// @Param        max_price  query     number  false  "Inclusive upper price bound"
// @Param        sort       query     string  false  "price_asc, price_desc, name or newest"
// @Success      200        {array}   productResponse
// @Failure      400        {object}  errorResponse
// @Router       /products [get]
func (h *CatalogHandler) List(c echo.Context) error {
	products, err := h.catalog.List(c.Request().Context(), ports.ProductQuery{
		Category: c.QueryParam("category"),
		Brand:    c.QueryParam("brand"),
		Search:   c.QueryParam("search"),
		MinPrice: c.QueryParam("min_price"),
		MaxPrice: c.QueryParam("max_price"),
		Sort:     c.QueryParam("sort"),
	})
	if err != nil {
		return err
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns a single product.
//
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  productResponse
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [get]
func (h *CatalogHandler) Get(c echo.Context) error {
	p, err := h.catalog.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

// Categories lists the distinct categories in the catalog.
//
// @Summary      List categories
// @Tags         products
// @Produce      json
// @Success      200  {array}  string
// @Router       /products/categories [get]
func (h *CatalogHandler) Categories(c echo.Context) error {
	values, err := h.catalog.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(values))
}

// Brands lists the distinct brands in the catalog.
//
// @Summary      List brands
// @Tags         products
// @Produce      json
// @Success      200  {array}  string
// @Router       /products/brands [get]
func (h *CatalogHandler) Brands(c echo.Context) error {
	values, err := h.catalog.Brands(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(values))
}

// Create adds a product. Admin only.
//
// @Summary      Create product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProductRequest  true  "Product"
// @Success      201   {object}  productResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /products [post]
func (h *CatalogHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	p, err := h.catalog.Create(c.Request().Context(), actor(c), ports.ProductInput{
		Name:        req.Name,
		Brand:       req.Brand,
		Model:       req.Model,
		Category:    req.Category,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price.text,
		Stock:       req.Stock.text,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

// Update changes the given fields of a product. Admin only.
//
// @Summary      Update product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Product ID"
// @Param        body  body      updateProductRequest  true  "Fields to change"
// @Success      200   {object}  productResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /products/{id} [put]
func (h *CatalogHandler) Update(c echo.Context) error {
	var req updateProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	p, err := h.catalog.Update(c.Request().Context(), actor(c), c.Param("id"), ports.ProductPatch{
		Name:        req.Name,
		Brand:       req.Brand,
		Model:       req.Model,
		Category:    req.Category,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price.ptr(),
		Stock:       req.Stock.ptr(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

// Delete removes a product and returns it. Admin only.
//
// @Summary      Delete product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  productResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [delete]
func (h *CatalogHandler) Delete(c echo.Context) error {
	p, err := h.catalog.Delete(c.Request().Context(), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
