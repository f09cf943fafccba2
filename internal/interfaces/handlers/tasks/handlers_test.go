package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	catsvc "foundersbook-backend/internal/application/categories"
	tasksvc "foundersbook-backend/internal/application/tasks"
	"foundersbook-backend/internal/domain"
	"foundersbook-backend/internal/infrastructure/database"
	"foundersbook-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTaskHandlersTest(t *testing.T) (*fiber.App, domain.User) {
	db, err := database.Open("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	u := domain.User{Name: "Asha", Email: "asha@example.com"}
	require.NoError(t, db.Create(&u).Error)
	_, _, err = (&catsvc.Service{DB: db}).UpsertTaskCategory(context.Background(), "Legal", []string{"Contracts"})
	require.NoError(t, err)

	h := &Handlers{Service: &tasksvc.Service{DB: db}}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if c.Get("X-Anonymous") == "" {
			middleware.SetUser(c, &middleware.SessionUser{UserID: u.ID.String(), Name: u.Name})
		}
		return c.Next()
	})
	g := app.Group("/tasks", middleware.RequireAuth())
	g.Post("/", h.CreateTask)
	g.Get("/", h.GetTasks)
	g.Get("/:id", h.GetTask)
	g.Put("/:id", h.UpdateTask)
	g.Delete("/:id", h.DeleteTask)
	g.Post("/:id/notes", h.AddNote)
	return app, u
}

func call(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, []byte) {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

func TestTaskHandlers(t *testing.T) {
	app, u := setupTaskHandlersTest(t)

	req := httptest.NewRequest("GET", "/tasks", nil)
	req.Header.Set("X-Anonymous", "1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	status, body := call(t, app, "POST", "/tasks", map[string]string{
		"title": "Sign lease", "category": "Finance", "subcategory": "x", "deadline": "2024-06-10", "assignedTo": u.ID.String(),
	})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"Category not found"}`, string(body))

	status, body = call(t, app, "POST", "/tasks", map[string]string{
		"title": "Sign lease", "category": "Legal", "subcategory": "Contracts", "deadline": "2024-06-10", "assignedTo": u.ID.String(),
	})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var v tasksvc.View
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, "Legal", v.CategoryName)
	id := v.ID.String()

	status, body = call(t, app, "PUT", "/tasks/"+id, map[string]string{"status": "In Progress"})
	require.Equal(t, fiber.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, domain.TaskInProgress, v.Status)

	status, _ = call(t, app, "PUT", "/tasks/"+id, map[string]string{"status": "Blocked"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = call(t, app, "POST", "/tasks/"+id+"/notes", map[string]string{"content": "Landlord replied"})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var notes []domain.TaskNote
	require.NoError(t, json.Unmarshal(body, &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "Asha", notes[0].CreatedByName)

	status, body = call(t, app, "GET", "/tasks?status=In%20Progress", nil)
	require.Equal(t, fiber.StatusOK, status)
	var list []tasksvc.View
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)

	status, _ = call(t, app, "DELETE", "/tasks/"+id, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = call(t, app, "GET", "/tasks/"+id, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}
