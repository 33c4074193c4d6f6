package checkpoint

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	return NewStore(filepath.Join(t.TempDir(), DefaultFileName), logger)
}

func TestStoreLoad_Missing(t *testing.T) {
	store := newTestStore(t)

	cp, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cp) != 0 {
		t.Errorf("expected empty checkpoint, got %v", cp)
	}
	if store.Exists() {
		t.Error("Load must not create the file")
	}
}

func TestStoreRoundTrip_NonLatin(t *testing.T) {
	store := newTestStore(t)

	texts := map[string]string{
		"vi": "Tôi ăn một quả táo & uống <trà>.",
		"th": "ฉันกินแอปเปิ้ล",
		"ja": "りんごを食べます",
		"ar": "أنا آكل تفاحة",
		"id": "Saya makan apel 🍎",
	}

	cp := New()
	for code, text := range texts {
		p := cp.Language(code)
		p.Record(0, text, text+" example")
		p.Record(64, "", text)
	}
	cp.Language("th").Complete = true
	cp.Language("vi").MarkFailed(FieldMeaning, 64)

	if err := store.Save(cp); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("Failed to read checkpoint: %v", err)
	}
	for _, text := range texts {
		if !bytes.Contains(raw, []byte(text)) {
			t.Errorf("checkpoint file does not contain %q verbatim", text)
		}
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for code, text := range texts {
		p := loaded[code]
		if p == nil {
			t.Fatalf("language %s missing after reload", code)
		}
		meaning, example := p.Get(0)
		if meaning != text || example != text+" example" {
			t.Errorf("%s row 0 = %q / %q", code, meaning, example)
		}
		meaning, example = p.Get(64)
		if meaning != "" || example != text || !p.Has(64) {
			t.Errorf("%s row 64 = %q / %q", code, meaning, example)
		}
	}
	if !loaded["th"].Complete || loaded["vi"].Complete {
		t.Error("completion flags not preserved")
	}
	if !loaded["vi"].IsFailed(FieldMeaning, 64) {
		t.Error("failed cell not preserved")
	}
}

func TestStoreLoad_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `{"vi": {"meanings": {"0": "quả`},
		{"wrong shape", `[1, 2, 3]`},
		{"bad row index", `{"vi": {"meanings": {"zero": "x"}, "examples": {}}}`},
		{"negative row index", `{"vi": {"meanings": {}, "examples": {"-1": "x"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			if err := os.WriteFile(store.Path(), []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write checkpoint: %v", err)
			}

			_, err := store.Load()
			if !errors.Is(err, ErrCorrupt) {
				t.Fatalf("expected ErrCorrupt, got %v", err)
			}

			var corrupt *CorruptError
			if !errors.As(err, &corrupt) || corrupt.Path != store.Path() {
				t.Errorf("expected *CorruptError for %s, got %v", store.Path(), err)
			}

			// The file must be left alone for the operator
			if !store.Exists() {
				t.Error("corrupt checkpoint was removed")
			}
		})
	}
}

func TestStoreLoad_NullEntries(t *testing.T) {
	store := newTestStore(t)
	content := `{"vi": null, "th": {"complete": true}}`
	if err := os.WriteFile(store.Path(), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write checkpoint: %v", err)
	}

	cp, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cp["vi"] == nil || cp["vi"].Meanings == nil {
		t.Error("null language entry should load as empty progress")
	}
	if !cp["th"].Complete || cp["th"].Examples == nil {
		t.Error("partial entry should keep its flag and get empty maps")
	}
}

func TestStoreSave_FormatKeyedByLanguage(t *testing.T) {
	store := newTestStore(t)
	cp := New()
	cp.Language("vi").Record(2, "b", "c")

	if err := store.Save(cp); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, _ := os.ReadFile(store.Path())
	want := `{"vi":{"meanings":{"2":"b"},"examples":{"2":"c"},"complete":false}}`
	if strings.TrimSpace(string(raw)) != want {
		t.Errorf("checkpoint = %s, want %s", raw, want)
	}
}

func TestStoreSave_OverwritesAtomically(t *testing.T) {
	store := newTestStore(t)

	first := New()
	first.Language("vi").Record(0, "one", "one")
	if err := store.Save(first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := New()
	second.Language("vi").Record(0, "two", "two")
	second.Language("vi").Record(1, "three", "three")
	if err := store.Save(second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if meaning, _ := loaded["vi"].Get(0); meaning != "two" {
		t.Errorf("row 0 = %q, want two", meaning)
	}

	entries, _ := os.ReadDir(filepath.Dir(store.Path()))
	if len(entries) != 1 {
		t.Errorf("expected only the checkpoint file, found %d entries", len(entries))
	}
}

func TestStoreSave_UnwritableDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing", DefaultFileName), nil)

	if err := store.Save(New()); err == nil {
		t.Error("expected error when the directory does not exist")
	}
}

func TestStoreClear(t *testing.T) {
	store := newTestStore(t)

	// Absent file is a no-op
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear on missing file failed: %v", err)
	}

	if err := store.Save(New()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if store.Exists() {
		t.Error("checkpoint still exists after Clear")
	}
}
