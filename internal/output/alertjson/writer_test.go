package alertjson

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"authtriage/pkg/models"
)

func TestWriteAlerts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.jsonl")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	alerts := []*models.Alert{
		{AlertID: "a1", Risk: models.RiskMedium, AttackLabels: []string{"SSH Brute Force"}},
		{AlertID: "a2", Risk: models.RiskHigh, AttackLabels: []string{"Privileged Account Targeting"}},
	}
	if err := w.WriteAlerts(alerts); err != nil {
		t.Fatalf("write: %v", err)
	}
	if w.Count() != 2 {
		t.Fatalf("expected count 2, got %d", w.Count())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var got models.Alert
	if err := json.Unmarshal([]byte(lines[1]), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.AlertID != "a2" || got.Risk != models.RiskHigh {
		t.Fatalf("unexpected alert %+v", got)
	}

	if err := w.WriteAlerts(alerts); err == nil {
		t.Fatalf("expected error after close")
	}
}
