package users

import (
	"io"
	"net/http/httptest"
	"testing"

	usersvc "foundersbook-backend/internal/application/users"
	"foundersbook-backend/internal/domain"
	"foundersbook-backend/internal/infrastructure/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUsers_NamesOnly(t *testing.T) {
	db, err := database.Open("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	bilal := domain.User{Name: "Bilal", Email: "bilal@example.com"}
	asha := domain.User{Name: "Asha", Email: "asha@example.com"}
	require.NoError(t, db.Create(&bilal).Error)
	require.NoError(t, db.Create(&asha).Error)

	h := &Handlers{Service: &usersvc.Service{DB: db}}
	app := fiber.New()
	app.Get("/users", h.GetUsers)

	resp, err := app.Test(httptest.NewRequest("GET", "/users", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `[{"id":"`+asha.ID.String()+`","name":"Asha"},{"id":"`+bilal.ID.String()+`","name":"Bilal"}]`, string(b))
}
