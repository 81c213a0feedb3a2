package helper

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFiber(t *testing.T) {
	app := fiber.New()
	var got Params
	app.Get("/", func(c *fiber.Ctx) error {
		got = ParseFiber(c, "created_at", "desc", DefaultOpts)
		return nil
	})

	cases := []struct {
		query string
		want  Params
	}{
		{"", Params{Page: 1, PerPage: 25, SortBy: "created_at", SortOrder: "desc"}},
		{"?page=3&limit=10&sort_by=name&sort=ASC", Params{Page: 3, PerPage: 10, SortBy: "name", SortOrder: "asc"}},
		{"?page=-1&per_page=9999&order=sideways", Params{Page: 1, PerPage: 200, SortBy: "created_at", SortOrder: "desc"}},
	}
	for _, tc := range cases {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+tc.query, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.query)
	}
	assert.Equal(t, 20, Params{Page: 3, PerPage: 10}.Offset())
}

func TestSafeOrder(t *testing.T) {
	allowed := map[string]string{"name": "fee_component_name", "created_at": "fee_component_created_at"}

	o, err := Params{SortBy: "name", SortOrder: "asc"}.SafeOrder(allowed, "created_at")
	require.NoError(t, err)
	assert.Equal(t, "fee_component_name ASC", o)

	// kolom di luar whitelist → default
	o, err = Params{SortBy: "1;drop table", SortOrder: "desc"}.SafeOrder(allowed, "created_at")
	require.NoError(t, err)
	assert.Equal(t, "fee_component_created_at DESC", o)

	_, err = Params{}.SafeOrder(allowed, "missing")
	assert.Error(t, err)
}

func TestBuildPagination(t *testing.T) {
	p := BuildPagination(51, Params{Page: 2, PerPage: 25}, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = BuildPagination(0, Params{}, 0)
	assert.Equal(t, 1, p.TotalPages)
	assert.False(t, p.HasNext)
}

type sampleDTO struct {
	Name string `json:"fee_component_name" validate:"required,max=5"`
	Type string `json:"fee_component_type" validate:"required,oneof=a b"`
}

func TestBindAndValidate(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var in sampleDTO
		err := BindAndValidate(c, &in)
		if m, ok := ValidationErrorMap(err); ok {
			return JsonValidationError(c, m)
		}
		if err != nil {
			return JsonError(c, fiber.StatusBadRequest, err.Error())
		}
		return JsonCreated(c, "", in)
	})

	post := func(body string) (int, map[string]any) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		var out map[string]any
		require.NoError(t, sonic.Unmarshal(raw, &out))
		return resp.StatusCode, out
	}

	code, out := post(`{`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, false, out["success"])

	code, out = post(`{"fee_component_name":"toolong","fee_component_type":"z"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	errs, _ := out["errors"].(map[string]any)
	assert.Contains(t, errs, "fee_component_name")
	assert.Contains(t, errs, "fee_component_type")

	code, out = post(`{"fee_component_name":"SPP","fee_component_type":"a"}`)
	assert.Equal(t, fiber.StatusCreated, code)
	assert.Equal(t, true, out["success"])
}
