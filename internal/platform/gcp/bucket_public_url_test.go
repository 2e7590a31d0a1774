package gcp

import (
	"testing"

	"github.com/yungbote/placeshare-backend/internal/platform/objectstorage"
)

func baseConfig() objectstorage.Config {
	return objectstorage.Config{
		Mode:         objectstorage.ModeGCS,
		PlaceBucket:  "ps-places",
		AvatarBucket: "ps-avatars",
	}
}

func TestPublicURLGCSDefault(t *testing.T) {
	got := publicURL(baseConfig(), objectstorage.BucketCategoryPlace, "/place/abc.jpg")
	want := "https://storage.googleapis.com/ps-places/place/abc.jpg"
	if got != want {
		t.Fatalf("publicURL: want=%q got=%q", want, got)
	}
}

func TestPublicURLPrefersCDN(t *testing.T) {
	cfg := baseConfig()
	cfg.AvatarCDN = "cdn.example.com"
	got := publicURL(cfg, objectstorage.BucketCategoryAvatar, "avatar/u.png")
	if want := "https://cdn.example.com/avatar/u.png"; got != want {
		t.Fatalf("publicURL: want=%q got=%q", want, got)
	}
}

func TestPublicURLEmulatorMediaURL(t *testing.T) {
	cfg := baseConfig()
	cfg.Mode = objectstorage.ModeGCSEmulator
	cfg.EmulatorHost = "http://fake-gcs:4443"
	got := publicURL(cfg, objectstorage.BucketCategoryPlace, "place/abc.jpg")
	want := "http://fake-gcs:4443/storage/v1/b/ps-places/o/place%2Fabc.jpg?alt=media"
	if got != want {
		t.Fatalf("publicURL: want=%q got=%q", want, got)
	}

	cfg.PublicBaseURL = "http://localhost:4443"
	got = publicURL(cfg, objectstorage.BucketCategoryPlace, "place/abc.jpg")
	want = "http://localhost:4443/storage/v1/b/ps-places/o/place%2Fabc.jpg?alt=media"
	if got != want {
		t.Fatalf("publicURL with base: want=%q got=%q", want, got)
	}
}

func TestPublicURLPublicBase(t *testing.T) {
	cfg := baseConfig()
	cfg.PublicBaseURL = "https://assets.example.com"
	got := publicURL(cfg, objectstorage.BucketCategoryPlace, "place/abc.jpg")
	if want := "https://assets.example.com/ps-places/place/abc.jpg"; got != want {
		t.Fatalf("publicURL: want=%q got=%q", want, got)
	}
}

func TestNewBucketServiceRejectsForeignMode(t *testing.T) {
	cfg := baseConfig()
	cfg.Mode = objectstorage.ModeS3
	if _, err := NewBucketService(nil, cfg); err == nil {
		t.Fatalf("expected error for s3 mode")
	}
}

func TestClientOptions(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if opts := ClientOptions(""); opts != nil {
		t.Fatalf("empty creds: want nil got %d options", len(opts))
	}
	if opts := ClientOptions(`{"type":"service_account"}`); len(opts) != 1 {
		t.Fatalf("json creds: want 1 option got %d", len(opts))
	}
	if opts := ClientOptions("/etc/creds.json"); len(opts) != 1 {
		t.Fatalf("file creds: want 1 option got %d", len(opts))
	}
}
