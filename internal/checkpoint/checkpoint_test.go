package checkpoint

import (
	"reflect"
	"testing"
)

func TestProgressRecordAndHas(t *testing.T) {
	p := NewProgress()

	if p.Has(0) {
		t.Error("empty progress should not have row 0")
	}
	if p.State() != StatePending {
		t.Errorf("State() = %s, want pending", p.State())
	}

	p.Record(0, "quả táo", "Tôi ăn một quả táo.")
	if !p.Has(0) {
		t.Error("row 0 should be recorded")
	}
	if p.State() != StateInProgress {
		t.Errorf("State() = %s, want in_progress", p.State())
	}

	meaning, example := p.Get(0)
	if meaning != "quả táo" || example != "Tôi ăn một quả táo." {
		t.Errorf("Get(0) = %q, %q", meaning, example)
	}

	// A row with only a meaning is not satisfied
	p.Meanings["1"] = "chạy"
	if p.Has(1) {
		t.Error("row with a single field should not count as recorded")
	}

	p.Complete = true
	if p.State() != StateComplete {
		t.Errorf("State() = %s, want complete", p.State())
	}
}

func TestProgressFailedCells(t *testing.T) {
	p := NewProgress()
	p.Record(3, "", "ok")
	p.Record(7, "ok", "")
	p.Record(9, "fine", "fine")
	p.MarkFailed(FieldMeaning, 3)
	p.MarkFailed(FieldExample, 7)
	p.MarkFailed(FieldExample, 3)
	p.Complete = true

	if !p.IsFailed(FieldMeaning, 3) || p.IsFailed(FieldMeaning, 7) {
		t.Error("IsFailed reports the wrong cells")
	}
	if p.FailedCount() != 3 {
		t.Errorf("FailedCount() = %d, want 3", p.FailedCount())
	}
	if got := p.FailedRows(); !reflect.DeepEqual(got, []int{3, 7}) {
		t.Errorf("FailedRows() = %v, want [3 7]", got)
	}

	if dropped := p.DropFailed(); dropped != 2 {
		t.Errorf("DropFailed() = %d, want 2", dropped)
	}
	if p.Has(3) || p.Has(7) {
		t.Error("failed rows should be forgotten")
	}
	if !p.Has(9) {
		t.Error("healthy row should be kept")
	}
	if p.Complete {
		t.Error("completion flag should be cleared after dropping rows")
	}
	if p.FailedCount() != 0 {
		t.Error("failed sets should be empty after DropFailed")
	}
}

func TestProgressDropFailed_NothingFailed(t *testing.T) {
	p := NewProgress()
	p.Record(0, "a", "b")
	p.Complete = true

	if dropped := p.DropFailed(); dropped != 0 {
		t.Errorf("DropFailed() = %d, want 0", dropped)
	}
	if !p.Complete {
		t.Error("completion flag should survive when nothing was dropped")
	}
}

func TestCheckpointLanguage(t *testing.T) {
	cp := New()
	vi := cp.Language("vi")
	vi.Record(0, "a", "b")

	if cp.Language("vi") != vi {
		t.Error("Language should return the same progress on repeated calls")
	}

	cp["th"] = nil
	if cp.Language("th") == nil {
		t.Error("Language should replace a nil entry")
	}

	if got := cp.Codes(); !reflect.DeepEqual(got, []string{"th", "vi"}) {
		t.Errorf("Codes() = %v", got)
	}
}

func TestSummarize(t *testing.T) {
	cp := New()
	cp.Language("vi").Record(0, "a", "b")
	cp.Language("vi").MarkFailed(FieldMeaning, 0)
	cp.Language("th").Complete = true

	summary := Summarize("progress.json", cp)
	if summary.Path != "progress.json" {
		t.Errorf("Path = %q", summary.Path)
	}
	if len(summary.Languages) != 2 {
		t.Fatalf("expected 2 languages, got %d", len(summary.Languages))
	}

	th := summary.Languages[0]
	if th.Code != "th" || th.Name != "Thai" || th.State != StateComplete {
		t.Errorf("unexpected th summary: %+v", th)
	}

	vi := summary.Languages[1]
	if vi.Meanings != 1 || vi.Examples != 1 || vi.FailedCells != 1 || vi.State != StateInProgress {
		t.Errorf("unexpected vi summary: %+v", vi)
	}
	if !reflect.DeepEqual(vi.FailedRows, []int{0}) {
		t.Errorf("FailedRows = %v", vi.FailedRows)
	}
}
