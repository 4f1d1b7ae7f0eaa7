package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authsvc "github.com/wishboardapp/wishboard-backend/internal/auth"
	"github.com/wishboardapp/wishboard-backend/internal/cache"
	productsvc "github.com/wishboardapp/wishboard-backend/internal/products"
	userssvc "github.com/wishboardapp/wishboard-backend/internal/users"
	wishlistsvc "github.com/wishboardapp/wishboard-backend/internal/wishlists"
	"github.com/wishboardapp/wishboard-backend/pkg/config"
	"github.com/wishboardapp/wishboard-backend/pkg/db"
	"github.com/wishboardapp/wishboard-backend/pkg/db/models"
	"github.com/wishboardapp/wishboard-backend/pkg/logger"
	pkgredis "github.com/wishboardapp/wishboard-backend/pkg/redis"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeKV struct {
	data map[string]string
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	value, ok := f.data[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return value, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	default:
		return errors.New("unsupported value type")
	}
	return nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

type fakeSessions struct {
	tokens map[string]string
}

func (f *fakeSessions) Issue(_ context.Context, userID string) (string, error) {
	token := uuid.NewString()
	f.tokens[userID] = token
	return token, nil
}

func (f *fakeSessions) Rotate(ctx context.Context, userID, token string) (string, error) {
	if f.tokens[userID] != token {
		return "", errors.New("refresh token mismatch")
	}
	return f.Issue(ctx, userID)
}

func (f *fakeSessions) Revoke(_ context.Context, userID string) error {
	delete(f.tokens, userID)
	return nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}, &models.Image{}, &models.Wishlist{}, &models.Product{}))

	cfg := &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "wishboard-test",
			ExpirationMinutes: 10,
		},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8 * 1024,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		Images: config.ImagesConfig{PublicBaseURL: "/api/v1/images"},
	}

	store, err := cache.New(&fakeKV{data: map[string]string{}}, nil)
	require.NoError(t, err)

	log := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	client := db.NewWithConn(conn)
	usersRepo := userssvc.NewRepository(conn)
	wishlistRepo := wishlistsvc.NewRepository(conn)

	return NewRouter(Deps{
		Config:      cfg,
		Logger:      log,
		AuthService: authsvc.NewService(client, usersRepo, &fakeSessions{tokens: map[string]string{}}, cfg, log),
		UsersRepo:   usersRepo,
		Wishlists:   wishlistsvc.NewService(client, wishlistRepo, usersRepo, store, log),
		Products: productsvc.NewService(client, productsvc.NewRepository(conn), wishlistRepo,
			usersRepo, store, log, cfg.Images.PublicBaseURL),
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func dataField(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func registerAndLogin(t *testing.T, router http.Handler, username string) (token string, userID string) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name":     "Test " + username,
		"username": username,
		"email":    username + "@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    username + "@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := dataField(t, rec)
	user := data["user"].(map[string]any)
	return data["access_token"].(string), user["id"].(string)
}

func TestHealthLive(t *testing.T) {
	router := testRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Wishboard-Env"))
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := testRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/wish-lists", "", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWishlistLifecycle(t *testing.T) {
	router := testRouter(t)
	token, userID := registerAndLogin(t, router, "ada")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/wish-lists", token, map[string]any{"name": "My Wishlist"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := dataField(t, rec)
	assert.Equal(t, "my-wishlist", created["slug"])
	assert.Equal(t, true, created["is_active"])
	assert.Equal(t, userID, created["user_id"])
	wishlistID := created["id"].(string)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/wish-lists/"+wishlistID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/api/v1/wish-lists/"+wishlistID, token, map[string]any{"name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Renamed", dataField(t, rec)["name"])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/users/ada/wish-lists", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/wish-lists/"+wishlistID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, dataField(t, rec)["deleted"])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/wish-lists/"+wishlistID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCrossUserMutationIsForbidden(t *testing.T) {
	router := testRouter(t)
	ownerToken, _ := registerAndLogin(t, router, "owner")
	strangerToken, _ := registerAndLogin(t, router, "stranger")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/wish-lists", ownerToken, map[string]any{"name": "Private"})
	require.Equal(t, http.StatusCreated, rec.Code)
	wishlistID := dataField(t, rec)["id"].(string)

	rec = doJSON(t, router, http.MethodPatch, "/api/v1/wish-lists/"+wishlistID, strangerToken, map[string]any{"name": "Mine Now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "You're not authorized to access this wish list.")
}

func TestProductLifecycle(t *testing.T) {
	router := testRouter(t)
	token, _ := registerAndLogin(t, router, "ada")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/wish-lists", token, map[string]any{"name": "Gifts"})
	require.Equal(t, http.StatusCreated, rec.Code)
	wishlistID := dataField(t, rec)["id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/products", token, map[string]any{
		"name":         "Lego Set",
		"description":  "The big one",
		"wish_list_id": wishlistID,
		"image_links":  []string{"https://img.example.com/a.png", "https://img.example.com/a.png"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := dataField(t, rec)
	productID := created["id"].(string)
	assert.Len(t, created["image_links"], 1, "duplicate links collapse")

	rec = doJSON(t, router, http.MethodGet, "/api/v1/users/products", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/api/v1/products/"+productID+"/is-active", token, map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, false, dataField(t, rec)["is_active"])

	rec = doJSON(t, router, http.MethodPatch, "/api/v1/products/"+productID+"/images", token, map[string]any{
		"image_links": []string{"https://img.example.com/b.png"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/v1/users/ada/wish-lists/gifts/products", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/products/"+productID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/products/"+productID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidationErrorsAreDetailed(t *testing.T) {
	router := testRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name":     "Ada",
		"username": "ab",
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}
