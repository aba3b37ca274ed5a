package helper

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveFor(t *testing.T, target string) Paging {
	t.Helper()

	app := fiber.New()
	var got Paging
	app.Get("/items", func(c *fiber.Ctx) error {
		got = ResolvePaging(c, 20, 200)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return got
}

func TestResolvePaging(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := resolveFor(t, "/items")
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 20, p.PerPage)
		assert.Equal(t, 0, p.Offset)
	})

	t.Run("explicit page and per_page", func(t *testing.T) {
		p := resolveFor(t, "/items?page=3&per_page=50")
		assert.Equal(t, 3, p.Page)
		assert.Equal(t, 50, p.PerPage)
		assert.Equal(t, 100, p.Offset)
	})

	t.Run("limit alias", func(t *testing.T) {
		p := resolveFor(t, "/items?limit=5")
		assert.Equal(t, 5, p.PerPage)
	})

	t.Run("caps at max", func(t *testing.T) {
		p := resolveFor(t, "/items?per_page=9999")
		assert.Equal(t, 200, p.PerPage)
	})

	t.Run("garbage falls back", func(t *testing.T) {
		p := resolveFor(t, "/items?page=x&per_page=-4")
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 20, p.PerPage)
	})
}

func TestBuildPaginationFromPage(t *testing.T) {
	p := BuildPaginationFromPage(95, 2, 20)
	assert.Equal(t, int64(95), p.Total)
	assert.Equal(t, 5, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	empty := BuildPaginationFromPage(0, 1, 20)
	assert.Equal(t, 1, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, IsDuplicateKey(errors.New(`ERROR: duplicate key value violates unique constraint "uq_submissions_assignment_student" (SQLSTATE 23505)`)))
	assert.True(t, IsDuplicateKey(errors.New("unique constraint failed")))
	assert.False(t, IsDuplicateKey(errors.New("connection refused")))
	assert.False(t, IsDuplicateKey(nil))
}
