package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"vize-study-service/internal/domain"
)

func TestSessionStoreDefaultsBeforeFirstSave(t *testing.T) {
	store := NewSessionStore()
	session, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if session.Settings.Theme != "light" || !session.Settings.ShowExplanationImmediately {
		t.Fatalf("expected default settings, got %+v", session.Settings)
	}
	if len(session.MistakeBank) != 0 || len(session.ReviewSchedule) != 0 {
		t.Fatalf("expected empty progress, got %+v", session)
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	saved := domain.DefaultUserSession()
	saved.MistakeBank = []string{"q1", "q9"}
	saved.Streak = domain.Streak{Count: 3, LastStudiedDate: "2024-11-22"}
	if err := store.Save(ctx, saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.MistakeBank) != 2 || loaded.Streak.Count != 3 {
		t.Fatalf("round trip lost data: %+v", loaded)
	}
}

func TestFileSessionStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	first := NewFileSessionStore(path)
	saved := domain.DefaultUserSession()
	saved.MistakeBank = []string{"q4"}
	if err := first.Save(ctx, saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := NewFileSessionStore(path)
	loaded, err := second.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.MistakeBank) != 1 || loaded.MistakeBank[0] != "q4" {
		t.Fatalf("expected progress to survive restart, got %+v", loaded)
	}
}

func TestDecodeSessionBlobFillsMissingFields(t *testing.T) {
	// An older blob that only carried the mistake bank.
	blob := []byte(`{"userSession":{"mistakeBank":["q2"]}}`)
	session, err := DecodeSessionBlob(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(session.MistakeBank) != 1 || session.MistakeBank[0] != "q2" {
		t.Fatalf("expected mistake bank kept, got %+v", session.MistakeBank)
	}
	if session.Settings.Theme != "light" || !session.Settings.ShowExplanationImmediately {
		t.Fatalf("expected missing settings filled from defaults, got %+v", session.Settings)
	}
	if session.ReviewSchedule == nil {
		t.Fatalf("expected review schedule initialized")
	}
}

func TestDecodeSessionBlobPartialSettings(t *testing.T) {
	blob := []byte(`{"userSession":{"settings":{"theme":"dark"}}}`)
	session, err := DecodeSessionBlob(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if session.Settings.Theme != "dark" {
		t.Fatalf("expected theme override, got %q", session.Settings.Theme)
	}
	if !session.Settings.ShowExplanationImmediately {
		t.Fatalf("expected absent flag to keep its default")
	}
}

func TestFileSessionStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	session, err := NewFileSessionStore(path).Load(context.Background())
	if err == nil {
		t.Fatalf("expected an error for a corrupt blob")
	}
	if session.Settings.Theme != "light" {
		t.Fatalf("expected defaults alongside the error, got %+v", session)
	}
}
