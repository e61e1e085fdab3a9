package geo

import (
	"testing"

	"github.com/hantar/loadplan/core/model"
)

func testRules() []ZoneRule {
	return []ZoneRule{
		{Zone: model.ZoneNorth, Keywords: []string{"ipoh", "taiping"}},
		{Zone: model.ZoneCentralLeft, Keywords: []string{"petaling jaya", "pj", "subang"}},
		{Zone: model.ZoneCentralRight, Keywords: []string{"ampang", "cheras"}},
		{Zone: model.ZoneSouth, Keywords: []string{"johor", "melaka"}},
	}
}

func TestClassifier_KeywordMatch(t *testing.T) {
	c, err := NewClassifier(testRules(), model.ZoneEast)
	if err != nil {
		t.Fatalf("new classifier: %v", err)
	}
	if z := c.Classify("123 Jalan, Petaling Jaya"); z != model.ZoneCentralLeft {
		t.Errorf("expected central-left, got %s", z)
	}
	if z := c.Classify("Taman Cheras Utama"); z != model.ZoneCentralRight {
		t.Errorf("expected central-right, got %s", z)
	}
}

func TestClassifier_DefaultZone(t *testing.T) {
	c, err := NewClassifier(testRules(), model.ZoneEast)
	if err != nil {
		t.Fatalf("new classifier: %v", err)
	}
	if z := c.Classify("Unknown Town"); z != model.ZoneEast {
		t.Errorf("expected default east, got %s", z)
	}
	if z := c.Classify(""); z != model.ZoneEast {
		t.Errorf("expected default east for empty address, got %s", z)
	}
}

func TestClassifier_CaseInsensitive(t *testing.T) {
	c, err := NewClassifier(testRules(), model.ZoneEast)
	if err != nil {
		t.Fatalf("new classifier: %v", err)
	}
	if z := c.Classify("12 JALAN IPOH"); z != model.ZoneNorth {
		t.Errorf("expected north for uppercase address, got %s", z)
	}
}

func TestClassifier_PriorityOrder(t *testing.T) {
	// "pj" and "ampang" both appear; the first rule in priority order wins.
	c, err := NewClassifier(testRules(), model.ZoneEast)
	if err != nil {
		t.Fatalf("new classifier: %v", err)
	}
	if z := c.Classify("PJ near Ampang"); z != model.ZoneCentralLeft {
		t.Errorf("expected first matching rule to win, got %s", z)
	}
}

func TestClassifier_Deterministic(t *testing.T) {
	c, err := NewClassifier(testRules(), model.ZoneEast)
	if err != nil {
		t.Fatalf("new classifier: %v", err)
	}
	addr := "Lot 7, Subang Jaya"
	first := c.Classify(addr)
	for i := 0; i < 100; i++ {
		if z := c.Classify(addr); z != first {
			t.Fatalf("classification changed between calls: %s vs %s", first, z)
		}
	}
}

func TestClassifier_RejectsUnknownZones(t *testing.T) {
	if _, err := NewClassifier([]ZoneRule{{Zone: "west", Keywords: []string{"x"}}}, model.ZoneEast); err == nil {
		t.Fatal("expected error for unknown zone in rules")
	}
	if _, err := NewClassifier(testRules(), "nowhere"); err == nil {
		t.Fatal("expected error for unknown default zone")
	}
}
