package reportjson

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"authtriage/pkg/models"
)

func TestWriterAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reports.jsonl")

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	reports := []*models.Report{
		{ID: "r1", Verdict: models.Verdict{Risk: models.RiskLow}},
		nil,
		{ID: "r2", Verdict: models.Verdict{Risk: models.RiskHigh}},
	}
	if err := w.WriteReports(reports); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening appends instead of truncating.
	w, err = NewWriter(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := w.WriteReports([]*models.Report{{ID: "r3"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	w.Close()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r models.Report
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("decode line %q: %v", sc.Text(), err)
		}
		ids = append(ids, r.ID)
	}
	if len(ids) != 3 || ids[0] != "r1" || ids[1] != "r2" || ids[2] != "r3" {
		t.Fatalf("expected [r1 r2 r3], got %v", ids)
	}
}

func TestWriteAfterCloseFails(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "r.jsonl"))
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	w.Close()
	if err := w.WriteReports([]*models.Report{{ID: "x"}}); err == nil {
		t.Fatalf("expected error after close")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestNewWriterRequiresPath(t *testing.T) {
	if _, err := NewWriter(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
