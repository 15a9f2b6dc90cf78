package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/tasknet/contest-system/docs"
	"github.com/tasknet/contest-system/handlers"
	"github.com/tasknet/contest-system/middleware"
)

// SetupRoutes mounts the full HTTP surface on the given router.
func SetupRoutes(
	router *chi.Mux,
	authn *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	contestHandler *handlers.ContestHandler,
	taskHandler *handlers.TaskHandler,
	userTaskHandler *handlers.UserTaskHandler,
	statsHandler *handlers.StatsHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","data":{"health":"ok"}}`))
	})

	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.OpenAPISpec)
	})
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Users
	router.Post("/users/register", authHandler.Register)
	router.Post("/users/login", authHandler.Login)
	router.Group(func(r chi.Router) {
		r.Use(authn.Require)
		r.Get("/users", userHandler.List)
		r.Get("/users/me", userHandler.Me)
		r.Put("/users/me", userHandler.UpdateMe)
		r.Delete("/users/me", userHandler.DeleteMe)
		r.Get("/users/search", userHandler.Search)
	})

	// Flat listings for the authenticated user
	router.Group(func(r chi.Router) {
		r.Use(authn.Require)
		r.Get("/tasks", taskHandler.List)
		r.Get("/user-tasks", userTaskHandler.ListAll)
	})

	router.Route("/contests", func(r chi.Router) {
		// Public reads. Optional auth lets members see private contests.
		r.Group(func(r chi.Router) {
			r.Use(authn.Optional)
			r.Get("/", contestHandler.List)
			r.Get("/public", contestHandler.ListPublic)
			r.Get("/slug/{slug}", contestHandler.GetBySlug)
			r.Get("/{contest_id}", contestHandler.GetByID)
			r.Get("/{contest_id}/participants", contestHandler.Participants)
			r.Get("/{contest_id}/tasks", taskHandler.ListByContest)
			r.Get("/{contest_id}/tasks/{task_id}", taskHandler.GetByID)
			r.Get("/{contest_id}/stats/overall", statsHandler.ContestOverall)
			r.Get("/{contest_id}/stats/tasks", statsHandler.ContestTasks)
			r.Get("/{contest_id}/stats/leaderboard", statsHandler.Leaderboard)
		})

		r.Group(func(r chi.Router) {
			r.Use(authn.Require)

			r.Post("/", contestHandler.Create)
			r.Get("/my", contestHandler.ListCreated)
			r.Get("/my/contests", contestHandler.ListCreated)
			r.Get("/my/joined", contestHandler.ListJoined)
			r.Put("/{contest_id}", contestHandler.Update)
			r.Delete("/{contest_id}", contestHandler.Delete)

			// Membership
			r.Post("/{contest_id}/join", contestHandler.Join)
			r.Delete("/{contest_id}/leave", contestHandler.Leave)
			r.Put("/{contest_id}/participants/{user_id}/role", contestHandler.UpdateParticipantRole)
			r.Post("/{contest_id}/members", contestHandler.AddMember)
			r.Delete("/{contest_id}/members/{user_id}", contestHandler.RemoveMember)

			// Tasks
			r.Post("/{contest_id}/tasks", taskHandler.Create)
			r.Put("/{contest_id}/tasks/{task_id}", taskHandler.Update)
			r.Delete("/{contest_id}/tasks/{task_id}", taskHandler.Delete)

			// Assignments
			r.Route("/{contest_id}/user-tasks", func(r chi.Router) {
				r.Post("/assign", userTaskHandler.BulkAssign)
				r.Get("/", userTaskHandler.ListByContest)
				r.Get("/{task_id}", userTaskHandler.Get)
				r.Delete("/{task_id}", userTaskHandler.Remove)
				r.Post("/{task_id}/assign", userTaskHandler.AssignOne)
				r.Put("/{task_id}/status", userTaskHandler.UpdateStatus)
				r.Get("/{task_id}/access", userTaskHandler.CheckAccess)
				r.Post("/{task_id}/submit-answer", userTaskHandler.SubmitAnswer)
				r.Get("/{task_id}/answer", userTaskHandler.GetAnswer)
			})

			// Personal and per-user statistics
			r.Get("/{contest_id}/stats/my-tasks", statsHandler.MyTaskProgress)
			r.Get("/{contest_id}/stats/my-stats", statsHandler.MyContestStats)
			r.Get("/{contest_id}/stats/users/{user_id}/tasks", statsHandler.UserTaskProgress)
			r.Get("/{contest_id}/stats/users/{user_id}/stats", statsHandler.UserContestStats)
		})
	})
}
