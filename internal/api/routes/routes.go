package routes

import (
	"github.com/elzaeemwork/autoreply-backend/internal/api/handlers"
	"github.com/elzaeemwork/autoreply-backend/internal/api/middleware"
	"github.com/elzaeemwork/autoreply-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Auth     *handlers.AuthHandler
	Chat     *handlers.ChatHandler
	Product  *handlers.ProductHandler
	Order    *handlers.OrderHandler
	Store    *handlers.StoreHandler
	Admin    *handlers.AdminHandler
	Facebook *handlers.FacebookHandler
	Webhook  *handlers.WebhookHandler
	WS       *handlers.WSHandler

	Users services.UserService
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Messenger platform callbacks, unauthenticated by design.
	r.GET("/api/webhook", d.Webhook.Verify)
	r.POST("/api/webhook", d.Webhook.Receive)

	r.POST("/api/auth/register", d.Auth.Register)
	r.POST("/api/auth/login", d.Auth.Login)
	r.POST("/api/admin/login", d.Admin.Login)

	// Protected routes (JWT)
	auth := r.Group("/api")
	auth.Use(middleware.JWTAuth())

	auth.GET("/auth/me", d.Auth.Me)
	auth.POST("/auth/activate", d.Auth.Activate)

	auth.GET("/products", d.Product.List)
	auth.POST("/products", d.Product.Create)
	auth.PUT("/products/:id", d.Product.Update)
	auth.DELETE("/products/:id", d.Product.Delete)
	auth.POST("/products/:id/image", d.Product.UploadImage)

	auth.GET("/orders", d.Order.List)
	auth.GET("/orders/:id", d.Order.Get)
	auth.POST("/orders", d.Order.Create)
	auth.PUT("/orders/:id", d.Order.Update)
	auth.PUT("/orders/:id/status", d.Order.UpdateStatus)
	auth.DELETE("/orders/:id", d.Order.Delete)

	auth.GET("/messages", d.Chat.History)
	auth.GET("/messages/stats", d.Chat.Stats)
	auth.POST("/messages/chat", middleware.Quota(d.Users), d.Chat.Send)

	auth.GET("/store/info", d.Store.Get)
	auth.POST("/store/info", d.Store.Update)

	auth.GET("/facebook/connection", d.Facebook.GetConnection)
	auth.POST("/facebook/connection", d.Facebook.SaveConnection)
	auth.DELETE("/facebook/connection", d.Facebook.Disconnect)

	// Admin surface
	admin := auth.Group("/admin")
	admin.Use(middleware.RequireAdmin())

	admin.GET("/users", d.Admin.ListUsers)
	admin.GET("/codes", d.Admin.ListCodes)
	admin.POST("/codes", d.Admin.CreateCode)
	admin.DELETE("/codes/:code", d.Admin.DeleteCode)
	admin.GET("/stats", d.Admin.Stats)

	// WebSocket chat tester
	ws := r.Group("/ws")
	ws.Use(middleware.JWTAuth())
	ws.GET("/chat", d.WS.ChatWS)
}
