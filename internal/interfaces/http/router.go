package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Recepcion-api/pkg/jwt"
	"github.com/jhoicas/Recepcion-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Receptions ReceptionService
	UploadDir  string
	JWTSecret  string
	Logger     *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	billing := RequireRole(jwt.RoleAdmin, jwt.RoleFacturacion)
	logistics := RequireRole(jwt.RoleAdmin, jwt.RoleLogistica)
	portfolio := RequireRole(jwt.RoleAdmin, jwt.RoleCartera)

	// Recepción de mercancía: facturación crea, logística escanea y cierra, cartera aprueba.
	receptions := protected.Group("/receptions")
	h := NewReceptionHandler(deps.Receptions, deps.UploadDir, deps.Logger)
	receptions.Post("/analyze", billing, h.Analyze)
	receptions.Get("/duplicate-check", h.CheckDuplicate)
	receptions.Get("/pending", h.ListPending)
	receptions.Get("/for-approval", h.ListForApproval)
	receptions.Get("/suppliers", h.ListSuppliers)
	receptions.Post("/", billing, h.Create)
	receptions.Get("/", h.List)
	receptions.Get("/:id", h.Get)
	receptions.Get("/:id/report", h.Report)
	receptions.Put("/:id/expected-items", billing, h.UpdateExpectedItems)
	receptions.Post("/:id/items", logistics, h.Scan)
	receptions.Post("/:id/complete-reception", logistics, h.Complete)
	receptions.Post("/:id/approve", portfolio, h.Approve)
}
