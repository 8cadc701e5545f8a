package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/manugamu/pfc/middleware/bearerauth"
	"github.com/manugamu/pfc/server"
	"github.com/manugamu/pfc/services/logging"
	"github.com/manugamu/pfc/services/revocation"
	"github.com/manugamu/pfc/services/token"
	"github.com/manugamu/pfc/services/users"
	"go.uber.org/fx"
)

type RouteParams struct {
	fx.In

	Server     *server.Server
	Tokens     *token.Service
	Users      *users.Store
	Revocation *revocation.Service
	Logger     *logging.Service

	Auth      *AuthHandler
	User      *UserHandler
	Fallas    *FallaHandler
	FallaChat *FallaChatHandler
	Events    *EventHandler
}

func RegisterRoutes(p RouteParams) {
	e := p.Server.Echo()
	e.Use(bearerauth.Authenticate(p.Tokens, p.Users, p.Revocation, p.Logger))

	registerAPIRoutes(e, p)
}

func registerAPIRoutes(e *echo.Echo, p RouteParams) {
	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/login", p.Auth.Login)
	authGroup.POST("/register", p.Auth.Register)
	authGroup.POST("/refresh", p.Auth.Refresh)
	authGroup.POST("/logout", p.Auth.Logout)
	authGroup.POST("/logout-device", p.Auth.LogoutDevice)

	userGroup := api.Group("/users")
	userGroup.GET("/me", p.User.Me, bearerauth.RequireAuth())
	userGroup.GET("/profile-image/:userId", p.User.ProfileImage)
	userGroup.PUT("/profile-image", p.User.UpdateProfileImage, bearerauth.RequireAuth())
	userGroup.PUT("/solicitar-union", p.User.RequestFallaJoin, bearerauth.RequireAuth())
	userGroup.POST("/cancelar-union", p.User.CancelFallaJoin, bearerauth.RequireAuth())
	userGroup.GET("/:id", p.User.GetByID)

	fallaGroup := api.Group("/falla")
	fallaGroup.GET("/codigo/:codigo", p.Fallas.ByCode)
	fallaGroup.GET("/solicitudes/:fallaId", p.Fallas.PendingRequests, bearerauth.RequireAuth())
	fallaGroup.POST("/aceptar", p.Fallas.Accept, bearerauth.RequireAuth(), bearerauth.RequireRoles(users.RoleFalla))
	fallaGroup.POST("/rechazar", p.Fallas.Reject, bearerauth.RequireAuth(), bearerauth.RequireRoles(users.RoleFalla))
	fallaGroup.DELETE("/:fallaId/fallero/:userId", p.Fallas.RemoveMember, bearerauth.RequireAuth(), bearerauth.RequireRoles(users.RoleFalla))
	fallaGroup.GET("/:fallaId/falleros", p.Fallas.Members, bearerauth.RequireAuth())

	chatGroup := api.Group("/falla-chats")
	chatGroup.GET("/:fallaCode", p.FallaChat.Get, bearerauth.RequireAuth())

	eventGroup := api.Group("/events")
	eventGroup.GET("", p.Events.List)
	eventGroup.GET("/:id", p.Events.Get)
	eventGroup.POST("", p.Events.Create, bearerauth.RequireAuth())
	eventGroup.DELETE("/:id", p.Events.Delete, bearerauth.RequireAuth())
}

var Module = fx.Options(
	fx.Provide(NewAuthHandler),
	fx.Provide(NewUserHandler),
	fx.Provide(NewFallaHandler),
	fx.Provide(NewFallaChatHandler),
	fx.Provide(NewEventHandler),
	fx.Invoke(RegisterRoutes),
)
