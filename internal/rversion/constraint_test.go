package rversion

import "testing"

func TestParseConstraintList(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []Constraint
	}{
		{"single ge", ">= 3.5.0", []Constraint{{OpGE, "3.5.0"}}},
		{"single gt no space", ">3.5.0", []Constraint{{OpGT, "3.5.0"}}},
		{"comma separated", ">= 1.0.0, < 2.0.0", []Constraint{{OpGE, "1.0.0"}, {OpLT, "2.0.0"}}},
		{"free-form text dropped", "a useful package for doing things", nil},
		{"mixed junk and constraint", "see also (>= 2.1)", []Constraint{{OpGE, "2.1"}}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseConstraintList(tt.expr)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseConstraintList(%q) = %v, want %v", tt.expr, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseConstraintList(%q)[%d] = %v, want %v", tt.expr, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSatisfiesAll(t *testing.T) {
	cs := ParseConstraintList(">= 1.0.0, < 2.0.0")
	if !SatisfiesAll("1.5.0", cs) {
		t.Errorf("expected 1.5.0 to satisfy %v", cs)
	}
	if SatisfiesAll("2.0.0", cs) {
		t.Errorf("expected 2.0.0 to violate upper bound in %v", cs)
	}
	if SatisfiesAll("0.9.0", cs) {
		t.Errorf("expected 0.9.0 to violate lower bound in %v", cs)
	}
}

func TestHighestSatisfying(t *testing.T) {
	versions := []string{"1.0.0", "1.5.0", "2.0.0", "1.9.9"}
	cs := ParseConstraintList("< 2.0.0")
	got, ok := HighestSatisfying(versions, cs)
	if !ok {
		t.Fatalf("expected a satisfying version")
	}
	if got != "1.9.9" {
		t.Errorf("HighestSatisfying = %q, want 1.9.9", got)
	}

	_, ok = HighestSatisfying(versions, ParseConstraintList(">= 5.0.0"))
	if ok {
		t.Errorf("expected no version to satisfy >= 5.0.0")
	}
}
