package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nodalcv/server/api/http/handlers"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Health    *handlers.HealthHandler
	Uploads   *handlers.UploadsHandler
	Profiles  *handlers.ProfilesHandler
	Public    *handlers.PublicHandler
	Editor    *handlers.EditorHandler
	Optimize  *handlers.OptimizeHandler
	Analytics *handlers.AnalyticsHandler
}

// Register wires all HTTP routes onto the Fiber app. Routes after authMW
// require a bearer token.
func Register(app *fiber.App, h Handlers, authMW fiber.Handler) {
	v1 := app.Group("/api/v1")

	v1.Get("/health", h.Health.Health)
	v1.Get("/ready", h.Health.Ready)

	a := v1.Group("/auth")
	a.Post("/register", h.Auth.Register)
	a.Post("/login", h.Auth.Login)
	a.Get("/me", authMW, h.Auth.Me)
	a.Put("/password", authMW, h.Auth.ChangePassword)

	pub := v1.Group("/public")
	pub.Get("/:slug", h.Public.Get)
	pub.Get("/:slug/pdf", h.Public.PDF)
	pub.Post("/:slug/keywords", h.Public.Keyword)

	up := v1.Group("/uploads", authMW)
	up.Post("/", h.Uploads.Upload)
	up.Get("/", h.Uploads.List)
	up.Delete("/:id", h.Uploads.Delete)

	pr := v1.Group("/profiles", authMW)
	pr.Get("/", h.Profiles.List)
	pr.Get("/:name", h.Profiles.Get)
	pr.Get("/:name/pdf", h.Profiles.PDF)
	pr.Delete("/:name", h.Profiles.Delete)

	ed := v1.Group("/editor", authMW)
	ed.Get("/", h.Editor.State)
	ed.Post("/open", h.Editor.Open)
	ed.Put("/draft", h.Editor.Draft)
	ed.Put("/visibility", h.Editor.Visibility)
	ed.Put("/availability", h.Editor.Availability)
	ed.Post("/save", h.Editor.Save)
	ed.Post("/publish", h.Editor.Publish)
	ed.Get("/notices", h.Editor.Notices)
	ed.Delete("/notices/:id", h.Editor.DismissNotice)

	op := v1.Group("/optimize", authMW)
	op.Post("/description", h.Optimize.Description)
	op.Post("/offer", h.Optimize.Offer)
	op.Post("/cover-letter", h.Optimize.CoverLetter)

	v1.Get("/analytics", authMW, h.Analytics.Summary)
}
