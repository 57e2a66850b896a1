package database

import (
	"context"
	"testing"
)

func TestSettingDefault(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.GetSetting(context.Background(), "missing", "fallback")
	if err != nil {
		t.Fatalf("GetSetting() failed: %v", err)
	}
	if got != "fallback" {
		t.Errorf("GetSetting(missing) = %q, want %q", got, "fallback")
	}
}

func TestSettingRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.SetSetting(ctx, "scan_file_filter", ".mp4;.mkv"); err != nil {
		t.Fatalf("SetSetting() failed: %v", err)
	}

	got, err := db.GetSetting(ctx, "scan_file_filter", "")
	if err != nil {
		t.Fatal(err)
	}
	if got != ".mp4;.mkv" {
		t.Errorf("GetSetting() = %q, want %q", got, ".mp4;.mkv")
	}

	// Overwrite.
	if err := db.SetSetting(ctx, "scan_file_filter", ".avi"); err != nil {
		t.Fatal(err)
	}
	got, _ = db.GetSetting(ctx, "scan_file_filter", "")
	if got != ".avi" {
		t.Errorf("GetSetting() after overwrite = %q, want %q", got, ".avi")
	}
}

func TestRemoveSetting(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.SetSetting(ctx, "k", "v"); err != nil {
		t.Fatal(err)
	}
	if err := db.RemoveSetting(ctx, "k"); err != nil {
		t.Fatalf("RemoveSetting() failed: %v", err)
	}

	got, _ := db.GetSetting(ctx, "k", "gone")
	if got != "gone" {
		t.Errorf("GetSetting(removed) = %q, want default", got)
	}

	// Removing an absent key is a no-op.
	if err := db.RemoveSetting(ctx, "k"); err != nil {
		t.Errorf("RemoveSetting(absent) = %v, want nil", err)
	}
}

func TestAllSettingsReturnsCopy(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.SetSetting(ctx, "a", "1"); err != nil {
		t.Fatal(err)
	}

	all, err := db.AllSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	all["a"] = "tampered"

	got, _ := db.GetSetting(ctx, "a", "")
	if got != "1" {
		t.Error("mutating the AllSettings() result leaked into the cache")
	}
}

func TestSettingsCacheIsAuthoritative(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.SetSetting(ctx, "cached", "original"); err != nil {
		t.Fatal(err)
	}

	// Modify the backing store behind the cache's back. The cache is never
	// invalidated, so the stale read is the documented behavior.
	if _, err := db.db.ExecContext(ctx,
		"UPDATE settings SET value = 'external' WHERE key = 'cached'"); err != nil {
		t.Fatal(err)
	}

	got, _ := db.GetSetting(ctx, "cached", "")
	if got != "original" {
		t.Errorf("GetSetting() = %q, want cached value %q", got, "original")
	}
}

func TestSettingsSurviveReopen(t *testing.T) {
	dbPath := t.TempDir() + "/reopen.db"
	ctx := context.Background()

	db, err := New(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.SetSetting(ctx, "last_scanned_folder", "/videos"); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	db2, err := New(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db2.Close()

	got, err := db2.GetSetting(ctx, "last_scanned_folder", "")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/videos" {
		t.Errorf("GetSetting() after reopen = %q, want %q", got, "/videos")
	}
}
