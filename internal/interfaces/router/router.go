package router

import (
	"foundersbook-backend/internal/app"
	"foundersbook-backend/internal/config"
	catshandler "foundersbook-backend/internal/interfaces/handlers/categories"
	dashhandler "foundersbook-backend/internal/interfaces/handlers/dashboard"
	eqhandler "foundersbook-backend/internal/interfaces/handlers/equity"
	exphandler "foundersbook-backend/internal/interfaces/handlers/expenses"
	healthhandler "foundersbook-backend/internal/interfaces/handlers/health"
	notifhandler "foundersbook-backend/internal/interfaces/handlers/notifications"
	projhandler "foundersbook-backend/internal/interfaces/handlers/projections"
	taskhandler "foundersbook-backend/internal/interfaces/handlers/tasks"
	userhandler "foundersbook-backend/internal/interfaces/handlers/users"
	"foundersbook-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// CreateApp connects resources and builds the Fiber app. The caller owns
// the returned resources.
func CreateApp(cfg *config.Config) (*fiber.App, *app.Resources, error) {
	res, err := app.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	svc, err := app.NewServices(cfg, res.DB, res.Dispatcher())
	if err != nil {
		res.Close()
		return nil, nil, err
	}
	return New(cfg, res, svc), res, nil
}

// New registers global middleware and every route.
func New(cfg *config.Config, res *app.Resources, svc *app.Services) *fiber.App {
	a := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	a.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	a.Use(middleware.Tracing())
	a.Use(middleware.Session(res.Rdb))
	a.Use(middleware.HealthMarker(res.Rdb))
	a.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{Rdb: res.Rdb, HealthAdminKey: cfg.HealthAdminKey}
	if sqlDB, err := res.DB.DB(); err == nil {
		hh.DB = sqlDB
	}
	a.Get("/", hh.Root)
	a.Get("/health/json", hh.JSON)
	a.Get("/health/reset", hh.Reset)

	auth := middleware.RequireAuth()

	eh := &exphandler.Handlers{Service: svc.Expenses, Parity: svc.Parity}
	eg := a.Group("/expenses")
	eg.Post("/", auth, eh.CreateExpense)
	eg.Get("/", auth, eh.GetExpenses)
	eg.Get("/monthly-summary", eh.GetMonthlySummary)
	eg.Get("/investment-parity", eh.GetInvestmentParity)
	eg.Post("/settle-month", eh.SettleMonth)
	eg.Get("/all-parities", eh.GetAllParities)

	qh := &eqhandler.Handlers{Service: svc.Equity}
	a.Get("/api/equity-split", auth, qh.GetEquitySplit)
	a.Post("/api/equity-split", auth, qh.SaveEquitySplit)

	ph := &projhandler.Handlers{Service: svc.Projections}
	pg := a.Group("/projection")
	pg.Post("/", auth, ph.CreateProjection)
	pg.Post("/calculate", ph.CalculateProjection)
	pg.Get("/all", ph.GetAllProjections)
	pg.Get("/:id", ph.GetProjection)
	pg.Put("/:id", ph.EditProjection)
	pg.Delete("/:id", ph.DeleteProjection)

	ch := &catshandler.Handlers{Service: svc.Categories}
	a.Get("/categories", ch.GetExpenseCategories)
	a.Post("/categories", ch.CreateExpenseCategory)
	a.Get("/task-categories", auth, ch.GetTaskCategories)
	a.Post("/task-categories", auth, ch.UpsertTaskCategory)

	uh := &userhandler.Handlers{Service: svc.Users}
	a.Get("/users", uh.GetUsers)

	th := &taskhandler.Handlers{Service: svc.Tasks}
	tg := a.Group("/tasks", auth)
	tg.Post("/", th.CreateTask)
	tg.Get("/", th.GetTasks)
	tg.Get("/:id", th.GetTask)
	tg.Put("/:id", th.UpdateTask)
	tg.Delete("/:id", th.DeleteTask)
	tg.Post("/:id/notes", th.AddNote)

	nh := &notifhandler.Handlers{Service: svc.Notifications}
	ng := a.Group("/notifications", auth)
	ng.Get("/", nh.GetNotifications)
	ng.Put("/:id/read", nh.MarkAsRead)

	dh := &dashhandler.Handlers{Service: svc.Dashboard}
	a.Get("/dashboard", auth, dh.GetDashboard)

	return a
}
