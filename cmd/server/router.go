package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskdesk/internal/api"
	apiMiddleware "github.com/phrazzld/taskdesk/internal/api/middleware"
)

// setupRouter registers every route behind the shared middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(app.authenticator, app.config.Auth, app.logger)
	taskHandler := api.NewTaskHandler(app.tasks, app.comments, app.logger)
	notificationHandler := api.NewNotificationHandler(app.notifications, app.logger)
	adminHandler := api.NewAdminHandler(app.users, app.broadcasts, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.authenticator, app.config.Auth.CookieName)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signin", authHandler.SignIn)
		r.Post("/auth/signout", authHandler.SignOut)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", authHandler.Me)

			r.Get("/tasks", taskHandler.ListTasks)
			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Put("/tasks/{id}", taskHandler.UpdateTask)
			r.Patch("/tasks/{id}", taskHandler.UpdateTask)
			r.Get("/tasks/{id}/comments", taskHandler.ListComments)
			r.Post("/tasks/{id}/comments", taskHandler.AddComment)

			r.Get("/notifications", notificationHandler.List)
			r.Put("/notifications", notificationHandler.MarkRead)
			r.Get("/notifications/unread-count", notificationHandler.UnreadCount)
			r.Delete("/notifications/{id}", notificationHandler.Delete)

			r.Group(func(r chi.Router) {
				r.Use(apiMiddleware.RequireAdmin)

				r.Post("/tasks", taskHandler.CreateTask)
				r.Delete("/tasks/{id}", taskHandler.DeleteTask)
				r.Get("/users", adminHandler.ListUsers)
				r.Get("/stats", taskHandler.Stats)
				r.Post("/email", adminHandler.SendEmail)
			})
		})
	})

	r.Get("/health", api.Health)

	return r
}
