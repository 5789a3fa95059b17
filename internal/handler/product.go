package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cinemagic/ticketing/internal/model"
	"github.com/cinemagic/ticketing/internal/repository"
)

// ProductHandler exposes the concession catalog and staff stock
// management.  Stock never moves through Update; it changes only via
// checkout claims and the explicit stock endpoint.
type ProductHandler struct {
	Products *repository.ProductRepo
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(products *repository.ProductRepo) *ProductHandler {
	if products == nil {
		panic("nil product repository passed to NewProductHandler")
	}
	return &ProductHandler{Products: products}
}

type productReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Stock       uint32  `json:"stock"`
}

func (r productReq) validate() string {
	if strings.TrimSpace(r.Name) == "" {
		return "name is required"
	}
	if r.Price <= 0 {
		return "price must be positive"
	}
	return ""
}

// List handles GET /v1/products.  ?category= filters by category and
// ?in_stock=true hides sold-out items.
func (h *ProductHandler) List(c echo.Context) error {
	category := c.QueryParam("category")
	inStock := c.QueryParam("in_stock") == "true"
	products, err := h.Products.ListProducts(c.Request().Context(), category, inStock)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// Get handles GET /v1/products/:id.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	p, err := h.Products.ProductByID(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Create handles POST /v1/products (staff).
func (h *ProductHandler) Create(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	p := model.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	}
	if err := h.Products.CreateProduct(c.Request().Context(), &p); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// Update handles PUT /v1/products/:id (staff).  Catalog fields only.
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	p := model.Product{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
	}
	if err := h.Products.UpdateProduct(c.Request().Context(), &p); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /v1/products/:id (staff).
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Products.DeleteProduct(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}

type stockReq struct {
	Quantity uint32 `json:"quantity"`
	Action   string `json:"action"` // "add" or "subtract"
}

// AdjustStock handles POST /v1/products/:id/stock (staff).  Subtracting
// below zero fails; the response reports the prior and new levels.
func (h *ProductHandler) AdjustStock(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req stockReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Quantity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
	}
	var subtract bool
	switch req.Action {
	case "add":
	case "subtract":
		subtract = true
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "action must be add or subtract"})
	}
	prior, current, err := h.Products.AdjustStock(c.Request().Context(), id, req.Quantity, subtract)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"prior_stock": prior, "stock": current})
}
