package products

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wishboardapp/wishboard-backend/internal/cache"
	"github.com/wishboardapp/wishboard-backend/internal/users"
	"github.com/wishboardapp/wishboard-backend/internal/wishlists"
	"github.com/wishboardapp/wishboard-backend/pkg/db"
	"github.com/wishboardapp/wishboard-backend/pkg/db/models"
	pkgerrors "github.com/wishboardapp/wishboard-backend/pkg/errors"
	"github.com/wishboardapp/wishboard-backend/pkg/logger"
	"github.com/wishboardapp/wishboard-backend/pkg/pagination"
	pkgredis "github.com/wishboardapp/wishboard-backend/pkg/redis"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeKV struct {
	data map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
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

type testEnv struct {
	db      *gorm.DB
	kv      *fakeKV
	store   *cache.Store
	service *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}, &models.Image{}, &models.Wishlist{}, &models.Product{}))

	kv := newFakeKV()
	store, err := cache.New(kv, nil)
	require.NoError(t, err)

	log := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	service := NewService(
		db.NewWithConn(conn),
		NewRepository(conn),
		wishlists.NewRepository(conn),
		users.NewRepository(conn),
		store,
		log,
		"/api/v1/images",
	)

	return &testEnv{db: conn, kv: kv, store: store, service: service}
}

func (e *testEnv) createUser(t *testing.T, username string) uuid.UUID {
	t.Helper()
	user := &models.User{
		Name:         username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, e.db.Create(user).Error)
	return user.ID
}

func (e *testEnv) createWishlist(t *testing.T, ownerID uuid.UUID, name, slug string) *models.Wishlist {
	t.Helper()
	wl := &models.Wishlist{Name: name, Slug: slug, IsActive: true, UserID: ownerID}
	require.NoError(t, e.db.Create(wl).Error)
	return wl
}

func (e *testEnv) createProduct(t *testing.T, wishlistID uuid.UUID, name string) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, WishlistID: wishlistID, IsActive: true}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func TestDedupeLinks(t *testing.T) {
	assert.Equal(t, []string{}, dedupeLinks(nil))
	assert.Equal(t, []string{"a", "b"}, dedupeLinks([]string{"a", "b", "a", "b", "a"}))

	unique := []string{"c", "a", "b"}
	once := dedupeLinks(unique)
	assert.Equal(t, unique, once, "already-unique input is returned unchanged, order preserved")
	assert.Equal(t, once, dedupeLinks(once), "dedupe is idempotent")
}

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "u1")
	wl := env.createWishlist(t, owner, "Gifts", "gifts")

	dto, err := env.service.Create(context.Background(), owner, CreateProductDTO{
		Name:        "Lego Set",
		Description: "The big one",
		WishlistID:  wl.ID,
		ImageLinks:  []string{"https://img/1", "https://img/1", "https://img/2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Lego Set", dto.Name)
	assert.Equal(t, wl.ID, dto.WishlistID)
	assert.True(t, dto.IsActive)
	assert.Equal(t, []string{"https://img/1", "https://img/2"}, dto.ImageLinks)
}

func TestCreateProductRequiresOwningWishlist(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "u1")
	stranger := env.createUser(t, "u2")
	wl := env.createWishlist(t, owner, "Gifts", "gifts")

	_, err := env.service.Create(context.Background(), stranger, CreateProductDTO{Name: "Nope", WishlistID: wl.ID})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
	assert.Equal(t, "You're not authorized to access this wish list.", typed.Message())
}

func TestCreateProductUnknownWishlist(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "u1")

	_, err := env.service.Create(context.Background(), owner, CreateProductDTO{Name: "x", WishlistID: uuid.New()})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	assert.Equal(t, "Wish List not found.", typed.Message())
}

func TestGetByIDFlattensOwnerProfile(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "u1")
	require.NoError(t, env.db.Create(&models.Image{UserID: owner, Name: "avatar.png", OriginalName: "me.png", Format: "png", Folder: "avatars"}).Error)
	wl := env.createWishlist(t, owner, "Gifts", "gifts")
	p := env.createProduct(t, wl.ID, "Camera")

	dto, err := env.service.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, dto.Owner)
	assert.Equal(t, "u1", dto.Owner.Username)
	require.NotNil(t, dto.Owner.Avatar)
	assert.Equal(t, "/api/v1/images/avatar.png", *dto.Owner.Avatar)
}

func TestGetByIDNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.GetByID(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "Product not found.", typed.Message())
}

func TestUpdateProductOwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "u1")
	stranger := env.createUser(t, "u2")
	wl := env.createWishlist(t, owner, "Gifts", "gifts")
	p := env.createProduct(t, wl.ID, "Original")

	name := "Hijacked"
	_, err := env.service.Update(context.Background(), stranger, p.ID, UpdateProductDTO{Name: &name})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
	assert.Equal(t, "You're not authorized to access this product.", typed.Message())

	var after models.Product
	require.NoError(t, env.db.First(&after, "id = ?", p.ID).Error)
	assert.Equal(t, "Original", after.Name)
}

func TestUpdateProductReparentsIntoOwnedWishlist(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "u1")
	src := env.createWishlist(t, owner, "Source", "source")
	dst := env.createWishlist(t, owner, "Destination", "destination")
	p := env.createProduct(t, src.ID, "Mover")

	dto, err := env.service.Update(context.Background(), owner, p.ID, UpdateProductDTO{WishlistID: &dst.ID})
	require.NoError(t, err)
	assert.Equal(t, dst.ID, dto.WishlistID)
}

func TestUpdateProductRejectsForeignDestination(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "u1")
	other := env.createUser(t, "u2")
	src := env.createWishlist(t, owner, "Source", "source")
	foreign := env.createWishlist(t, other, "Theirs", "theirs")
	p := env.createProduct(t, src.ID, "Stays")

	_, err := env.service.Update(context.Background(), owner, p.ID, UpdateProductDTO{WishlistID: &foreign.ID})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
	assert.Equal(t, "You're not authorized to access this wish list.", typed.Message())

	var after models.Product
	require.NoError(t, env.db.First(&after, "id = ?", p.ID).Error)
	assert.Equal(t, src.ID, after.WishlistID)
}

func TestUpdateProductFailedWriteRollsBack(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "u1")
	wl := env.createWishlist(t, owner, "Gifts", "gifts")
	p := env.createProduct(t, wl.ID, "Stable")

	key := env.store.MyProductsKey(owner)
	env.kv.data[key] = `[]`

	// Reject every UPDATE so the transaction aborts mid-write.
	require.NoError(t, env.db.Exec(`CREATE TRIGGER products_read_only
		BEFORE UPDATE ON products
		BEGIN SELECT RAISE(ABORT, 'storage offline'); END`).Error)

	name := "Unsaved"
	_, err := env.service.Update(context.Background(), owner, p.ID, UpdateProductDTO{Name: &name})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInternal, typed.Code())

	var after models.Product
	require.NoError(t, env.db.First(&after, "id = ?", p.ID).Error)
	assert.Equal(t, "Stable", after.Name, "failed write must leave prior field values")

	_, cached := env.kv.data[key]
	assert.True(t, cached, "a rolled-back write must not invalidate the cache")
}

func TestDeleteProductHardDeletes(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "u1")
	wl := env.createWishlist(t, owner, "Gifts", "gifts")
	p := env.createProduct(t, wl.ID, "Doomed")

	require.NoError(t, env.service.Delete(context.Background(), owner, p.ID))

	var count int64
	require.NoError(t, env.db.Model(&models.Product{}).Where("id = ?", p.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count, "product rows are removed outright")
}

func TestListMineCacheIgnoresFilter(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "u1")
	wl := env.createWishlist(t, owner, "Gifts", "gifts")
	env.createProduct(t, wl.ID, "Active")
	hidden := env.createProduct(t, wl.ID, "Hidden")
	require.NoError(t, env.db.Model(hidden).Update("is_active", false).Error)

	active := true
	first, err := env.service.ListMine(context.Background(), owner, MineFilter{IsActive: &active})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "Active", first[0].Name)

	// The cache key carries no filter: the unfiltered call replays the
	// filtered payload that warmed the cache.
	second, err := env.service.ListMine(context.Background(), owner, MineFilter{})
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestListMineInvalidatedByWrites(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "u1")
	wl := env.createWishlist(t, owner, "Gifts", "gifts")
	env.createProduct(t, wl.ID, "First")

	mine, err := env.service.ListMine(context.Background(), owner, MineFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = env.service.Create(context.Background(), owner, CreateProductDTO{Name: "Second", WishlistID: wl.ID})
	require.NoError(t, err)

	mine, err = env.service.ListMine(context.Background(), owner, MineFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestListMineExcludesDeletedWishlists(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "u1")
	kept := env.createWishlist(t, owner, "Kept", "kept")
	dropped := env.createWishlist(t, owner, "Dropped", "dropped")
	env.createProduct(t, kept.ID, "Visible")
	env.createProduct(t, dropped.ID, "Orphaned")
	require.NoError(t, env.db.Delete(dropped).Error)

	mine, err := env.service.ListMine(context.Background(), owner, MineFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Visible", mine[0].Name)
}

func TestListPublic(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "u1")
	wl := env.createWishlist(t, owner, "Gifts", "gifts")
	env.createProduct(t, wl.ID, "Shown")
	hidden := env.createProduct(t, wl.ID, "Hidden")
	require.NoError(t, env.db.Model(hidden).Update("is_active", false).Error)

	page, err := env.service.ListPublic(context.Background(), "u1", "gifts", pagination.Params{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, pagination.ProductsPerPage, page.PerPage)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Shown", page.Items[0].Name)
}

func TestListPublicUnknownUserAndSlug(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "u1")
	env.createWishlist(t, owner, "Gifts", "gifts")

	_, err := env.service.ListPublic(context.Background(), "ghost", "gifts", pagination.Params{})
	assert.Equal(t, "User not found.", pkgerrors.As(err).Message())

	_, err = env.service.ListPublic(context.Background(), "u1", "nope", pagination.Params{})
	assert.Equal(t, "Wish List not found.", pkgerrors.As(err).Message())
}

func TestReplaceImagesSkipsOwnershipAndCache(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "u1")
	wl := env.createWishlist(t, owner, "Gifts", "gifts")
	p := env.createProduct(t, wl.ID, "Pics")

	// Warm the cache so we can observe that this path never drops it.
	_, err := env.service.ListMine(context.Background(), owner, MineFilter{})
	require.NoError(t, err)
	key := env.store.MyProductsKey(owner)
	_, warmed := env.kv.data[key]
	require.True(t, warmed)

	dto, err := env.service.ReplaceImages(context.Background(), p.ID, []string{"https://img/a", "https://img/a", "https://img/b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img/a", "https://img/b"}, dto.ImageLinks)

	_, still := env.kv.data[key]
	assert.True(t, still, "image replacement leaves the listing cache alone")
}

func TestToggleActive(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "u1")
	stranger := env.createUser(t, "u2")
	wl := env.createWishlist(t, owner, "Gifts", "gifts")
	p := env.createProduct(t, wl.ID, "Switch")

	active, err := env.service.ToggleActive(context.Background(), owner, p.ID, false)
	require.NoError(t, err)
	assert.False(t, active, "the new flag value comes back, not the record")

	var after models.Product
	require.NoError(t, env.db.First(&after, "id = ?", p.ID).Error)
	assert.False(t, after.IsActive)

	_, err = env.service.ToggleActive(context.Background(), stranger, p.ID, true)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}
