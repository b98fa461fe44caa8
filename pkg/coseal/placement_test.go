package coseal

import (
	"reflect"
	"testing"
)

const (
	a4Width  = 595.28
	a4Height = 841.89
)

// Same N and ordering must always yield identical coordinates, otherwise
// re-generation would not be idempotent.
func TestPlanPlacementsDeterministic(t *testing.T) {
	for n := 1; n <= 20; n++ {
		first, err := PlanPlacements(n, a4Width, a4Height)
		if err != nil {
			t.Fatalf("PlanPlacements(%d) unexpected error: %v", n, err)
		}

		for i := 0; i < 5; i++ {
			again, err := PlanPlacements(n, a4Width, a4Height)
			if err != nil {
				t.Fatalf("PlanPlacements(%d) unexpected error: %v", n, err)
			}
			if !reflect.DeepEqual(first, again) {
				t.Fatalf("PlanPlacements(%d) not deterministic:\n%+v\n%+v", n, first, again)
			}
		}
	}
}

func TestPlanPlacementsZones(t *testing.T) {
	layout, err := PlanPlacements(6, a4Width, a4Height)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(layout.Stamps) != 6 {
		t.Fatalf("expected 6 stamps, got %d", len(layout.Stamps))
	}

	expectedZones := []Zone{ZoneBottomLeft, ZoneBottomCenter, ZoneBottomRight, ZoneRightMargin, ZoneRightMargin, ZoneRightMargin}
	for i, stamp := range layout.Stamps {
		if stamp.Order != i {
			t.Errorf("stamp %d has order %d", i, stamp.Order)
		}
		if stamp.Zone != expectedZones[i] {
			t.Errorf("stamp %d in zone %v, want %v", i, stamp.Zone, expectedZones[i])
		}
	}

	for _, stamp := range layout.Stamps[:3] {
		if stamp.Rotation != 0 {
			t.Errorf("bottom stamp %d rotated by %.0f", stamp.Order, stamp.Rotation)
		}
		if stamp.Y+stamp.Height > BottomBandHeight {
			t.Errorf("bottom stamp %d leaks out of the bottom band", stamp.Order)
		}
	}
	for _, stamp := range layout.Stamps[3:] {
		if stamp.Rotation != 90 {
			t.Errorf("right-margin stamp %d not rotated", stamp.Order)
		}
		if stamp.X < a4Width {
			t.Errorf("right-margin stamp %d overlaps original content at x=%.2f", stamp.Order, stamp.X)
		}
	}
}

func TestPlanPlacementsBands(t *testing.T) {
	tests := []struct {
		name          string
		n             int
		wantRightBand bool
	}{
		{"Single signer", 1, false},
		{"Three signers fill the bottom zones", 3, false},
		{"Fourth signer opens the right margin", 4, true},
		{"Many signers", 12, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, err := PlanPlacements(tt.n, a4Width, a4Height)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if layout.BottomBand != BottomBandHeight {
				t.Errorf("bottom band = %.2f, want %.2f", layout.BottomBand, BottomBandHeight)
			}
			if got := layout.RightBand > 0; got != tt.wantRightBand {
				t.Errorf("right band present = %v, want %v", got, tt.wantRightBand)
			}

			// Pages are expanded, never cropped.
			if layout.ExpandedWidth() < a4Width || layout.ExpandedHeight() <= a4Height {
				t.Errorf("expanded page %.2fx%.2f smaller than original", layout.ExpandedWidth(), layout.ExpandedHeight())
			}
		})
	}
}

func TestPlanPlacementsRejectsInvalidInput(t *testing.T) {
	if _, err := PlanPlacements(0, a4Width, a4Height); err == nil {
		t.Error("expected error for zero slots")
	}
	if _, err := PlanPlacements(-1, a4Width, a4Height); err == nil {
		t.Error("expected error for negative slots")
	}
	if _, err := PlanPlacements(2, 0, a4Height); err == nil {
		t.Error("expected error for zero page width")
	}
}
