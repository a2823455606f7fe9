package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"azzipizza/controllers"
	"azzipizza/realtime"
)

type Deps struct {
	Menu     *controllers.MenuController
	Orders   *controllers.OrderController
	Payments *controllers.PaymentController
	Hub      *realtime.Hub
	Notifier *realtime.OrderNotifier
}

func RegisterRoutes(r *gin.Engine, deps Deps) {

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":       "api is working",
			"menuRoutes":    "/api/menu",
			"orderRoutes":   "/api/orders",
			"paymentRoutes": "/api/payments",
		})
	})

	api := r.Group("/api")
	{
		menu := api.Group("/menu")
		{
			menu.GET("", deps.Menu.GetAllMenuItems)
			menu.POST("", deps.Menu.CreateMenuItem)
			menu.GET("/:id", deps.Menu.GetMenuItemByID)
			menu.PUT("/:id", deps.Menu.UpdateMenuItem)
			menu.DELETE("/:id", deps.Menu.DeleteMenuItem)
		}

		orders := api.Group("/orders")
		{
			orders.GET("", deps.Orders.GetAllOrders)
			orders.POST("", deps.Orders.CreateOrder)
			orders.GET("/:id", deps.Orders.GetOrderByID)
			orders.PUT("/:id", deps.Orders.UpdateOrderStatus)
			orders.DELETE("/:id", deps.Orders.DeleteOrder)
		}

		payments := api.Group("/payments")
		{
			payments.POST("/create-checkout", deps.Payments.CreateCheckout)
			payments.POST("/webhook", deps.Payments.Webhook)
			payments.GET("/cancel", deps.Payments.HandleCancel)
		}
	}

	r.GET("/ws", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// New subscribers see the current order list right away instead of
		// waiting for the next mutation.
		initial, _ := deps.Notifier.Snapshot(ctx)
		deps.Hub.ServeWS(c.Writer, c.Request, initial)
	})
}
