package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/task-manager-api/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/task-manager-api/internal/middleware" // import middleware for token authentication
)

// Register wires every route of the API onto the provided Echo instance.
// Routes that act on the caller's own data sit behind the auth gate; the
// avatar fetch by user id is deliberately public so avatars can be
// embedded anywhere, matching the rest of the product.
func Register(e *echo.Echo, users *handler.UserHandler, avatars *handler.AvatarHandler, tasks *handler.TaskHandler, gate middleware.TokenValidator) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Account creation and login need no session.
	e.POST("/users", users.Register)
	e.POST("/users/login", users.Login)

	// Avatar fetch by user id is intentionally unauthenticated.
	e.GET("/users/:id/avatar", avatars.Get)

	// Everything below acts as the authenticated caller.
	auth := middleware.Auth(gate)

	e.POST("/users/logout", users.Logout, auth)
	e.POST("/users/logoutAll", users.LogoutAll, auth)

	e.GET("/users/me", users.Me, auth)
	e.PATCH("/users/me", users.UpdateMe, auth)
	e.DELETE("/users/me", users.DeleteMe, auth)

	e.POST("/users/me/avatar", avatars.Upload, auth)
	e.DELETE("/users/me/avatar", avatars.Delete, auth)

	e.POST("/tasks", tasks.Create, auth)
	e.GET("/tasks", tasks.List, auth)
	e.GET("/tasks/:id", tasks.Get, auth)
	e.PATCH("/tasks/:id", tasks.Update, auth)
	e.DELETE("/tasks/:id", tasks.Delete, auth)
}
