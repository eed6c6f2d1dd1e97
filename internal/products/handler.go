package products

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valeevte/PriceDashboard/internal/logging"
)

type Handler struct {
	catalog Catalog
	log     *logging.Logger
}

func NewHandler(c Catalog, log *logging.Logger) *Handler {
	return &Handler{catalog: c, log: log}
}

type productView struct {
	Product
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
}

// ListProducts — GET /api/catalog/products
func (h *Handler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := h.catalog.Products(ctx)
	if err != nil {
		h.log.Errorf("ListProducts: catalog.Products error: %T: %v", err, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
		return
	}
	out := make([]productView, 0, len(list))
	for _, p := range list {
		out = append(out, productView{Product: p, Key: p.Key(), DisplayName: p.DisplayName()})
	}
	c.JSON(http.StatusOK, out)
}

// ListRetailers — GET /api/catalog/retailers
func (h *Handler) ListRetailers(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := h.catalog.Retailers(ctx)
	if err != nil {
		h.log.Errorf("ListRetailers: catalog.Retailers error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch retailers"})
		return
	}
	if list == nil {
		list = []Retailer{}
	}
	c.JSON(http.StatusOK, list)
}
