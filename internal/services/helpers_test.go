package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/placeshare-backend/internal/data/aggregates"
	aggtestutil "github.com/yungbote/placeshare-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/placeshare-backend/internal/data/repos"
	repotestutil "github.com/yungbote/placeshare-backend/internal/data/repos/testutil"
	"github.com/yungbote/placeshare-backend/internal/platform/geocode"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstorage"
)

func testLogger(t testing.TB) *logger.Logger {
	t.Helper()
	return repotestutil.Logger(t)
}

// memBucket is an in-memory BucketService with switchable failures.
type memBucket struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failUpload error
	failDelete error
	deletes    int
	// honorCtx makes deletes fail once the caller's context is done.
	honorCtx bool
}

func newMemBucket() *memBucket {
	return &memBucket{objects: map[string][]byte{}}
}

func (b *memBucket) UploadFile(_ context.Context, category objectstorage.BucketCategory, key string, file io.Reader) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failUpload != nil {
		return b.failUpload
	}
	raw, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.objects[key] = raw
	return nil
}

func (b *memBucket) DeleteFile(ctx context.Context, _ objectstorage.BucketCategory, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes++
	if b.honorCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	if b.failDelete != nil {
		return b.failDelete
	}
	if _, ok := b.objects[key]; !ok {
		return objectstorage.ErrObjectNotFound
	}
	delete(b.objects, key)
	return nil
}

func (b *memBucket) GetPublicURL(category objectstorage.BucketCategory, key string) string {
	return "https://cdn.test/" + key
}

func (b *memBucket) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok
}

func (b *memBucket) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

func (b *memBucket) deleteCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deletes
}

func (b *memBucket) setFailDelete(err error) {
	b.mu.Lock()
	b.failDelete = err
	b.mu.Unlock()
}

type fixedGeocoder struct {
	mu     sync.Mutex
	coords geocode.Coordinates
	err    error
	calls  int
}

func (g *fixedGeocoder) ResolveAddress(context.Context, string) (geocode.Coordinates, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.coords, g.err
}

func (g *fixedGeocoder) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func pngBytes(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xFF})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

var errBoom = errors.New("boom")

// harness wires the place and user services over a private SQLite store.
type harness struct {
	db       *gorm.DB
	store    *aggtestutil.InjectedStore
	hooks    *aggtestutil.HooksRecorder
	bucket   *memBucket
	geocoder *fixedGeocoder
	assets   AssetService
	janitor  AssetJanitor
	cleanups repos.AssetCleanupRepo
	places   PlaceService
	users    UserService
	auth     AuthService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := testLogger(t)
	db := repotestutil.DB(t)
	store := aggtestutil.NewInjectedStore(aggregates.NewEntityStore(aggregates.EntityStoreDeps{DB: db, Log: log}))
	hooks := &aggtestutil.HooksRecorder{}
	bucket := newMemBucket()
	geo := &fixedGeocoder{coords: geocode.Coordinates{Lat: 40.75, Lng: -73.98}}
	assets := NewAssetService(log, bucket, nil)
	cleanups := repos.NewAssetCleanupRepo(db, log)
	janitor := NewAssetJanitor(log, cleanups, assets, nil, AssetJanitorConfig{MaxAttempts: 3})
	auth, err := NewAuthService(log, "test-secret", 0)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	avatars, err := NewAvatarService(log, AvatarConfig{})
	if err != nil {
		t.Fatalf("NewAvatarService: %v", err)
	}
	return &harness{
		db:       db,
		store:    store,
		hooks:    hooks,
		bucket:   bucket,
		geocoder: geo,
		assets:   assets,
		janitor:  janitor,
		cleanups: cleanups,
		auth:     auth,
		places: NewPlaceService(log, PlaceServiceDeps{
			Store:    store,
			Hooks:    hooks,
			Assets:   assets,
			Janitor:  janitor,
			Geocoder: geo,
		}),
		users: NewUserService(log, UserServiceDeps{
			Store:      store,
			Hooks:      hooks,
			Auth:       auth,
			Assets:     assets,
			Janitor:    janitor,
			Avatars:    avatars,
			BcryptCost: 4,
		}),
	}
}
