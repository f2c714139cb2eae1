package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskdesk/backend/api/handler"
)

type Handlers struct {
	Auth      *apiHandler.AuthHandler
	Directory *apiHandler.DirectoryHandler
	Task      *apiHandler.TaskHandler
	Activity  *apiHandler.ActivityHandler
	Health    *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)

	// Protected routes
	r.GET("/api/v1/profile", authMiddleware(handlers.Directory.GetProfile))
	r.PUT("/api/v1/profile", authMiddleware(handlers.Directory.UpdateProfile))
	r.GET("/api/v1/users", authMiddleware(handlers.Directory.ListAssignable))

	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.ListTasks))
	r.GET("/api/v1/tasks/assigned", authMiddleware(handlers.Task.ListAssigned))
	r.GET("/api/v1/tasks/created", authMiddleware(handlers.Task.ListCreated))
	r.GET("/api/v1/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	r.GET("/api/v1/tasks/{id}/activity", authMiddleware(handlers.Activity.ListForTask))
	r.GET("/api/v1/activity", authMiddleware(handlers.Activity.List))

	return r
}
