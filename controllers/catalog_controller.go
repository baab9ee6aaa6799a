package controllers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fawazzo/lezzet-kapim/clients"
	apperrors "github.com/fawazzo/lezzet-kapim/common/errors"
	"github.com/fawazzo/lezzet-kapim/common/logger"
	"github.com/fawazzo/lezzet-kapim/models"
)

// CatalogController relays browsing, auth and order-history pages to
// the marketplace untouched; the storefront owns no catalog state.
type CatalogController struct {
	Marketplace *clients.MarketplaceClient
}

func NewCatalogController(marketplace *clients.MarketplaceClient) *CatalogController {
	return &CatalogController{Marketplace: marketplace}
}

// Proxy forwards a request to a fixed marketplace path.
func (cc *CatalogController) Proxy(method, path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		cc.forward(c, method, path)
	}
}

func (cc *CatalogController) RestaurantByID(c *gin.Context) {
	cc.forward(c, http.MethodGet, "/api/restaurants/"+c.Param("id"))
}

func (cc *CatalogController) RestaurantMenu(c *gin.Context) {
	cc.forward(c, http.MethodGet, "/api/menu/restaurant/"+c.Param("id"))
}

func (cc *CatalogController) CustomerOrders(c *gin.Context) {
	cc.forward(c, http.MethodGet, "/api/orders/customer")
}

// AuthProxy forwards login/register per role to the marketplace's auth
// endpoints; the storefront never mints or inspects credentials here.
func (cc *CatalogController) AuthProxy(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.Param("role")
		if role != models.RoleCustomer && role != models.RoleRestaurant && role != models.RoleDelivery {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown account type"})
			return
		}
		cc.forward(c, http.MethodPost, "/api/auth/"+role+"/"+action)
	}
}

func (cc *CatalogController) forward(c *gin.Context, method, path string) {
	var body io.Reader
	if c.Request.Body != nil {
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if len(payload) > 0 {
			body = bytes.NewReader(payload)
		}
	}

	resp, err := cc.Marketplace.Forward(c.Request.Context(), method, path, c.Request.URL.Query(), c.Request.Header, body)
	if err != nil {
		logger.Error(c, "upstream request failed", err)
		_ = c.Error(apperrors.New(http.StatusBadGateway, "upstream request failed", err))
		return
	}

	if err := clients.CopyResponse(c.Writer, resp); err != nil {
		logger.Error(c, "failed to read upstream response", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to read upstream response"})
		return
	}
}
