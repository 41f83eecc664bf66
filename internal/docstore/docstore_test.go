package docstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/vibeframe/vibeframe/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	return NewStore(d)
}

func TestOpenRequiresName(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Open(""); err == nil {
		t.Error("empty name accepted")
	}
	if _, err := store.Open("fp.vx-s1-todos"); err != nil {
		t.Errorf("open failed: %v", err)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	dbh, err := store.Open("fp.vx-s1-todos")
	if err != nil {
		t.Fatal(err)
	}

	id, err := dbh.Put(ctx, "", json.RawMessage(`{"text":"buy milk","done":false}`))
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("no id generated")
	}

	doc, err := dbh.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if doc == nil {
		t.Fatal("document not found")
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(doc.Body, &body); err != nil {
		t.Fatal(err)
	}
	if body.Text != "buy milk" {
		t.Errorf("body text = %q", body.Text)
	}
}

func TestPutUpserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	dbh, _ := store.Open("fp.vx-s1-todos")

	if _, err := dbh.Put(ctx, "t1", json.RawMessage(`{"v":1}`)); err != nil {
		t.Fatal(err)
	}
	if _, err := dbh.Put(ctx, "t1", json.RawMessage(`{"v":2}`)); err != nil {
		t.Fatal(err)
	}

	docs, err := dbh.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Fatalf("len = %d, want 1", len(docs))
	}
	if string(docs[0].Body) != `{"v":2}` {
		t.Errorf("body = %s", docs[0].Body)
	}
}

func TestPutRejectsInvalidJSON(t *testing.T) {
	store := newTestStore(t)
	dbh, _ := store.Open("fp.vx-s1-todos")
	if _, err := dbh.Put(context.Background(), "t1", json.RawMessage(`{broken`)); err == nil {
		t.Error("invalid JSON accepted")
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)
	dbh, _ := store.Open("fp.vx-s1-todos")
	doc, err := dbh.Get(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if doc != nil {
		t.Errorf("doc = %+v, want nil", doc)
	}
}

func TestDeleteMissingIsNotAnError(t *testing.T) {
	store := newTestStore(t)
	dbh, _ := store.Open("fp.vx-s1-todos")
	if err := dbh.Delete(context.Background(), "nope"); err != nil {
		t.Errorf("delete of missing doc errored: %v", err)
	}
}

func TestDatabasesAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, _ := store.Open("fp.vx-a-todos")
	b, _ := store.Open("fp.vx-b-todos")
	if _, err := a.Put(ctx, "t1", json.RawMessage(`{"owner":"a"}`)); err != nil {
		t.Fatal(err)
	}

	doc, err := b.Get(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if doc != nil {
		t.Error("document leaked across database names")
	}
}

func TestListDatabasesWithPrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"fp.vx-s1-todos", "fp.vx-s1-notes", "fp.vx-s2-todos"} {
		dbh, _ := store.Open(name)
		if _, err := dbh.Put(ctx, "d", json.RawMessage(`{}`)); err != nil {
			t.Fatal(err)
		}
	}

	names, err := store.ListDatabases(ctx, "fp.vx-s1-")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Errorf("names = %v, want two fp.vx-s1-* entries", names)
	}
}
