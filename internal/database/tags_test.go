package database

import (
	"context"
	"reflect"
	"testing"
)

func TestTagCountsIncludesUnused(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	mustAddFile(t, db, "/v/a.mp4", 1, testTime, "action")
	mustAddFile(t, db, "/v/b.mp4", 1, testTime, "action", "drama")

	// A tag created with no file selected exists with zero attachments.
	if err := db.AddTag(ctx, "unused"); err != nil {
		t.Fatalf("AddTag() failed: %v", err)
	}

	counts, err := db.TagCounts(ctx)
	if err != nil {
		t.Fatalf("TagCounts() failed: %v", err)
	}

	want := map[string]int{"action": 2, "drama": 1, "unused": 0}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("TagCounts() = %v, want %v", counts, want)
	}
}

func TestAddTagIsUnique(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.AddTag(ctx, "dupe"); err != nil {
		t.Fatalf("AddTag() failed: %v", err)
	}
	if err := db.AddTag(ctx, "dupe"); err != nil {
		t.Fatalf("AddTag() second call failed: %v", err)
	}

	counts, _ := db.TagCounts(ctx)
	if len(counts) != 1 {
		t.Errorf("expected a single tag row, got %v", counts)
	}
}

func TestAddTagEmptyName(t *testing.T) {
	db := setupTestDB(t)

	if err := db.AddTag(context.Background(), "   "); err == nil {
		t.Error("AddTag(blank) should fail")
	}
}

func TestSetTagIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	file := mustAddFile(t, db, "/v/a.mp4", 1, testTime)

	// Attach twice; auto-creates the tag on the first call.
	if err := db.SetTag(ctx, file.ID, "X"); err != nil {
		t.Fatalf("SetTag() failed: %v", err)
	}
	if err := db.SetTag(ctx, file.ID, "X"); err != nil {
		t.Fatalf("SetTag() second call failed: %v", err)
	}

	counts, _ := db.TagCounts(ctx)
	if counts["X"] != 1 {
		t.Errorf("counts[X] = %d, want 1", counts["X"])
	}
}

func TestAttachDetachAttach(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	file := mustAddFile(t, db, "/v/a.mp4", 1, testTime, "X")

	before, _ := db.TagCounts(ctx)

	if err := db.SetTag(ctx, file.ID, "X"); err != nil {
		t.Fatal(err)
	}
	if err := db.RemoveTag(ctx, file.ID, "X"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetTag(ctx, file.ID, "X"); err != nil {
		t.Fatal(err)
	}

	got, _ := db.GetFile(ctx, file.ID)
	if want := []string{"X"}; !reflect.DeepEqual(got.TagNames(), want) {
		t.Errorf("tag set after attach/detach/attach = %v, want %v", got.TagNames(), want)
	}

	after, _ := db.TagCounts(ctx)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("tag counts changed across the sequence: before %v, after %v", before, after)
	}
}

func TestRemoveTagNoOps(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	file := mustAddFile(t, db, "/v/a.mp4", 1, testTime)

	// Unknown tag, then known tag that is not attached: both silent no-ops.
	if err := db.RemoveTag(ctx, file.ID, "ghost"); err != nil {
		t.Errorf("RemoveTag(unknown tag) = %v, want nil", err)
	}
	if err := db.AddTag(ctx, "loose"); err != nil {
		t.Fatal(err)
	}
	if err := db.RemoveTag(ctx, file.ID, "loose"); err != nil {
		t.Errorf("RemoveTag(unattached tag) = %v, want nil", err)
	}
}

func TestDeleteTagCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	mustAddFile(t, db, "/v/a.mp4", 1, testTime, "X", "Y")
	mustAddFile(t, db, "/v/b.mp4", 1, testTime, "X")

	if err := db.DeleteTag(ctx, "X"); err != nil {
		t.Fatalf("DeleteTag() failed: %v", err)
	}

	counts, _ := db.TagCounts(ctx)
	if _, ok := counts["X"]; ok {
		t.Error("deleted tag still present in counts")
	}

	files, _ := db.ListFiles(ctx)
	for _, f := range files {
		if f.HasTag("X") {
			t.Errorf("file %s still holds deleted tag", f.Path)
		}
	}

	// Whitelisting the deleted tag matches no files.
	matched, err := db.ListFilesMatching(ctx, []string{"X"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(matched) != 0 {
		t.Errorf("whitelist on deleted tag matched %d files, want 0", len(matched))
	}

	// Deleting again is a no-op.
	if err := db.DeleteTag(ctx, "X"); err != nil {
		t.Errorf("DeleteTag(absent) = %v, want nil", err)
	}
}

func TestTagNamesAreCaseSensitive(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.AddTag(ctx, "Action"); err != nil {
		t.Fatal(err)
	}
	if err := db.AddTag(ctx, "action"); err != nil {
		t.Fatal(err)
	}

	counts, _ := db.TagCounts(ctx)
	if len(counts) != 2 {
		t.Errorf("expected two case-distinct tags, got %v", counts)
	}
}
