package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"etalase/internal/app"
	"etalase/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppPort:         ":0",
		DBDriver:        "memory",
		JWTSecret:       "test_jwt_secret",
		TokenTTL:        time.Hour,
		AdminUsername:   "owner",
		AdminPassword:   "secret123",
		AssetBackend:    "local",
		UploadDir:       t.TempDir(),
		UploadURLPrefix: "/uploads",
		SearchThreshold: 0.34,
		RequestTimeout:  5 * time.Second,
		SeedDemo:        true,
	}
}

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	a, err := app.New(context.Background(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestApp_Health(t *testing.T) {
	a := newTestApp(t)

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "disabled", body["events"])
}

func TestApp_SeededCatalogIsServed(t *testing.T) {
	a := newTestApp(t)

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/api/v1/items?sort=price_asc", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []struct {
		Code       string `json:"code"`
		ImageURL   string `json:"image_url"`
		PriceLabel string `json:"price_label"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 3)
	assert.Equal(t, "C3", items[0].Code)
	assert.Equal(t, "300 - 340", items[0].PriceLabel)

	// The local backend serves the stored image statically.
	img, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, items[0].ImageURL, nil), -1)
	require.NoError(t, err)
	defer img.Body.Close()
	assert.Equal(t, http.StatusOK, img.StatusCode)
}

func login(t *testing.T, a *app.App) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": "owner", "password": "secret123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.Fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out["token"])
	return out["token"]
}

func TestApp_UpdateKeepsFormValuesAfterLaterRequests(t *testing.T) {
	a := newTestApp(t)
	token := login(t, a)

	put := func(id uint, values url.Values) int {
		req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/admin/items/%d", id), strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := a.Fiber.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	require.Equal(t, http.StatusOK, put(1, url.Values{
		"code":     {"ZZ9"},
		"name":     {"Original Name Here"},
		"category": {"Summer"},
		"variants": {`[{"range":"M","price":100}]`},
	}))

	// Later requests reuse the pooled request buffers.
	for i := 0; i < 20; i++ {
		filler := strings.Repeat(fmt.Sprintf("%c", 'a'+i%26), 18)
		assert.Equal(t, http.StatusNotFound, put(999, url.Values{
			"code":     {fmt.Sprintf("Q%02d", i)},
			"name":     {filler},
			"category": {strings.ToUpper(filler[:6])},
			"variants": {`[{"range":"L","price":1}]`},
		}))
	}

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/api/v1/items/1", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var item struct {
		Code     string `json:"code"`
		Name     string `json:"name"`
		Category string `json:"category"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	assert.Equal(t, "ZZ9", item.Code)
	assert.Equal(t, "Original Name Here", item.Name)
	assert.Equal(t, "Summer", item.Category)
}

func TestApp_AdminRoutesNeedToken(t *testing.T) {
	a := newTestApp(t)

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/items/1", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	login, _ := json.Marshal(map[string]string{"username": "owner", "password": "secret123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(login))
	req.Header.Set("Content-Type", "application/json")
	resp, err = a.Fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body["token"])

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/admin/items/1", nil)
	req.Header.Set("Authorization", "Bearer "+body["token"])
	resp, err = a.Fiber.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
