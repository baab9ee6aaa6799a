package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fawazzo/lezzet-kapim/controllers"
	"github.com/fawazzo/lezzet-kapim/middleware"
)

func RegisterRoutes(
	r *gin.Engine,
	cartCtrl *controllers.CartController,
	checkoutCtrl *controllers.CheckoutController,
	catalogCtrl *controllers.CatalogController,
	jwtSecret string,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/storefront")
	api.Use(middleware.SessionMiddleware(jwtSecret))
	{
		// Catalog browsing and auth, relayed to the marketplace
		api.GET("/restaurants", catalogCtrl.Proxy(http.MethodGet, "/api/restaurants"))
		api.GET("/restaurants/:id", catalogCtrl.RestaurantByID)
		api.GET("/restaurants/:id/menu", catalogCtrl.RestaurantMenu)
		api.POST("/auth/:role/login", catalogCtrl.AuthProxy("login"))
		api.POST("/auth/:role/register", catalogCtrl.AuthProxy("register"))
		api.GET("/orders/customer", catalogCtrl.CustomerOrders)

		// Cart; guests get a session cookie, role gates live in the engine
		api.GET("/cart", cartCtrl.GetCart)
		api.POST("/cart/add", cartCtrl.AddItem)
		api.PUT("/cart/items/:menu_item_id", cartCtrl.UpdateQuantity)
		api.DELETE("/cart/remove/:menu_item_id", cartCtrl.RemoveItem)
		api.DELETE("/cart/clear", cartCtrl.ClearCart)

		// Two-step checkout surface
		api.POST("/checkout/open", checkoutCtrl.Open)
		api.GET("/checkout", checkoutCtrl.GetState)
		api.POST("/checkout/advance", checkoutCtrl.Advance)
		api.POST("/checkout/back", checkoutCtrl.Back)
		api.POST("/checkout/method", checkoutCtrl.SelectMethod)
		api.POST("/checkout/card", checkoutCtrl.CardInput)
		api.POST("/checkout/confirm", checkoutCtrl.Confirm)
		api.POST("/checkout/close", checkoutCtrl.Close)
	}
}
