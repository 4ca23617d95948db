package analyzer

import (
	"reflect"
	"testing"
)

func TestExtractFeaturesEmpty(t *testing.T) {
	f := ExtractFeatures("")
	if f.FailedPassword != 0 || f.InvalidUser != 0 || f.AuthFailure != 0 || f.TooManyFailures != 0 {
		t.Fatalf("expected zero counts, got %+v", f)
	}
	if f.RootTargeted {
		t.Fatalf("expected root not targeted")
	}
	if f.UniqueIPCount() != 0 {
		t.Fatalf("expected no IPs, got %v", f.SourceIPs)
	}
}

func TestExtractFeaturesIsCaseInsensitive(t *testing.T) {
	raw := "FAILED PASSWORD for x\nInvalid User y\nAuthentication Failure; USER=ROOT"

	f := ExtractFeatures(raw)
	if f.FailedPassword != 1 || f.InvalidUser != 1 || f.AuthFailure != 1 {
		t.Fatalf("unexpected counts: %+v", f)
	}
	if !f.RootTargeted {
		t.Fatalf("expected root marker to be detected")
	}
}

func TestExtractFeaturesCountsMultipleMarkersPerLine(t *testing.T) {
	f := ExtractFeatures("failed password failed password failed password")
	if f.FailedPassword != 3 {
		t.Fatalf("expected 3, got %d", f.FailedPassword)
	}
}

func TestExtractFeaturesUniqueIPsSorted(t *testing.T) {
	raw := "from 192.168.0.2 and 10.0.0.1, again 192.168.0.2; bogus 1.2.3 and v1.2.3.4x"

	f := ExtractFeatures(raw)
	want := []string{"10.0.0.1", "192.168.0.2"}
	if !reflect.DeepEqual(f.SourceIPs, want) {
		t.Fatalf("expected %v, got %v", want, f.SourceIPs)
	}
}

func TestExtractFeaturesRootMarkerIsLiteral(t *testing.T) {
	if ExtractFeatures("Failed password for root from 1.1.1.1").RootTargeted {
		t.Fatalf("expected plain 'root' not to count as the user=root marker")
	}
}

func TestExtractFeaturesIPWordBoundaries(t *testing.T) {
	cases := map[string][]string{
		"é1.2.3.4":             {},
		"1.2.3.4é":             {},
		"_1.2.3.4 1.2.3.4_":    {},
		"1.2.3.4567":           {},
		"ip=1.2.3.4.5":         {"1.2.3.4"},
		"(999.10.0.1)":         {"999.10.0.1"},
		"über 10.0.0.1/ü":      {"10.0.0.1"},
		"a 10.0.0.1,10.0.0.2.": {"10.0.0.1", "10.0.0.2"},
	}
	for in, want := range cases {
		if got := ExtractFeatures(in).SourceIPs; !reflect.DeepEqual(got, want) {
			t.Fatalf("SourceIPs(%q): expected %v, got %v", in, want, got)
		}
	}
}
