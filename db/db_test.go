package db

import (
	"database/sql"
	"testing"
	"time"

	"github.com/deemkeen/feedsync/domain"
	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	// every pooled connection would get its own :memory: database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	db := &DB{db: sqlDB}
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func comment(id, parent, content string) domain.Comment {
	return domain.Comment{
		Id:        domain.CommentID(id),
		ParentId:  parent,
		Author:    domain.ActorRef{Id: "u1", Username: "alice"},
		Content:   content,
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveAndLoadComments(t *testing.T) {
	db := setupTestDB(t)

	temp := comment(string(domain.NewTempCommentID()), "p1", "draft")
	temp.IsOptimistic = true
	pending := comment("2", "p1", "second")
	pending.IsPending = true

	err := db.SaveComments("p1", []domain.Comment{temp, comment("1", "p1", "first"), pending})
	if err != nil {
		t.Fatalf("SaveComments failed: %v", err)
	}

	err, loaded := db.LoadComments("p1")
	if err != nil {
		t.Fatalf("LoadComments failed: %v", err)
	}
	if len(*loaded) != 2 {
		t.Fatalf("Expected 2 comments, got %d", len(*loaded))
	}
	if (*loaded)[0].Id != "1" || (*loaded)[1].Id != "2" {
		t.Errorf("Order not preserved: %v", *loaded)
	}
	if (*loaded)[1].IsPending {
		t.Error("Pending flag should not survive a restore")
	}
	if (*loaded)[0].Author.Username != "alice" || !(*loaded)[0].CreatedAt.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("Fields not round-tripped: %+v", (*loaded)[0])
	}
}

func TestSaveCommentsReplacesSnapshot(t *testing.T) {
	db := setupTestDB(t)

	db.SaveComments("p1", []domain.Comment{comment("1", "p1", "a"), comment("2", "p1", "b")})
	db.SaveComments("p1", []domain.Comment{comment("3", "p1", "c")})

	err, loaded := db.LoadComments("p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(*loaded) != 1 || (*loaded)[0].Id != "3" {
		t.Errorf("Expected only the latest snapshot, got %v", *loaded)
	}
}

func TestLoadCommentsUnknownParent(t *testing.T) {
	db := setupTestDB(t)

	err, loaded := db.LoadComments("missing")
	if err != nil {
		t.Fatal(err)
	}
	if len(*loaded) != 0 {
		t.Errorf("Expected no comments, got %d", len(*loaded))
	}
}

func TestLoadAllAndDelete(t *testing.T) {
	db := setupTestDB(t)

	db.SaveComments("p1", []domain.Comment{comment("1", "p1", "a")})
	db.SaveComments("r9", []domain.Comment{comment("5", "r9", "x"), comment("6", "r9", "y")})

	err, all := db.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || len(all["r9"]) != 2 || all["r9"][1].Id != "6" {
		t.Errorf("Unexpected LoadAll result: %v", all)
	}

	if err := db.DeleteComments("r9"); err != nil {
		t.Fatal(err)
	}
	n, err := db.CountParents()
	if err != nil || n != 1 {
		t.Errorf("Expected 1 parent left, got %d (%v)", n, err)
	}
}

func TestLoadSkipsCorruptPayload(t *testing.T) {
	db := setupTestDB(t)

	db.SaveComments("p1", []domain.Comment{comment("1", "p1", "ok")})
	if _, err := db.db.Exec(sqlInsertComment, "p1", 1, "2", "{not json", time.Now().UTC()); err != nil {
		t.Fatal(err)
	}

	err, loaded := db.LoadComments("p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(*loaded) != 1 {
		t.Errorf("Expected corrupt row skipped, got %d", len(*loaded))
	}
}

func TestPruneBefore(t *testing.T) {
	db := setupTestDB(t)
	db.SaveComments("p1", []domain.Comment{comment("1", "p1", "a"), comment("2", "p1", "b")})

	removed, err := db.PruneBefore(time.Now().Add(-time.Hour))
	if err != nil || removed != 0 {
		t.Errorf("Expected nothing pruned, got %d (%v)", removed, err)
	}
	removed, err = db.PruneBefore(time.Now().Add(time.Hour))
	if err != nil || removed != 2 {
		t.Errorf("Expected 2 pruned, got %d (%v)", removed, err)
	}
}
