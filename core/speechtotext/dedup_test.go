package speechtotext

import "testing"

func TestDeduplicator(t *testing.T) {
	testCases := []struct {
		name     string
		sequence []string
		forward  []bool
	}{
		{
			name:     "first utterance always forwards",
			sequence: []string{"привет"},
			forward:  []bool{true},
		},
		{
			name:     "exact repeat suppressed",
			sequence: []string{"давай начнем урок", "давай начнем урок"},
			forward:  []bool{true, false},
		},
		{
			name:     "case-only repeat suppressed",
			sequence: []string{"Давай начнем урок", "давай начнем урок"},
			forward:  []bool{true, false},
		},
		{
			name:     "long corrected re-emission suppressed",
			sequence: []string{"один плюс один", "один плюс один равно двум кажется"},
			forward:  []bool{true, false},
		},
		{
			name:     "short extension treated as minor variation",
			sequence: []string{"один плюс один", "один плюс один да"},
			forward:  []bool{true, false},
		},
		{
			name:     "minor variation suppressed",
			sequence: []string{"сколько будет дважды два", "сколько будет дважды двa"},
			forward:  []bool{true, false},
		},
		{
			name:     "genuinely new utterance forwards",
			sequence: []string{"привет", "сколько будет дважды два"},
			forward:  []bool{true, true},
		},
		{
			name:     "comparison uses the freshest text",
			sequence: []string{"один плюс один", "один плюс один равно двум кажется", "один плюс один равно двум кажется"},
			forward:  []bool{true, false, false},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			dedup := NewDeduplicator()
			for i, text := range testCase.sequence {
				if got := dedup.ShouldForward(text); got != testCase.forward[i] {
					t.Fatalf("ShouldForward(%q) = %v at step %d, expected %v", text, got, i, testCase.forward[i])
				}
			}
		})
	}
}

func TestDeduplicatorResetForgetsHistory(t *testing.T) {
	dedup := NewDeduplicator()
	if !dedup.ShouldForward("привет") {
		t.Fatal("expected the first utterance to forward")
	}
	dedup.Reset()
	if !dedup.ShouldForward("привет") {
		t.Fatal("expected a repeat to forward after reset")
	}
}

func TestDeduplicatorIgnoresEmptyText(t *testing.T) {
	dedup := NewDeduplicator()
	if dedup.ShouldForward("   ") {
		t.Fatal("expected blank text to be suppressed")
	}
	if !dedup.ShouldForward("привет") {
		t.Fatal("expected blank text to not become the reference")
	}
}
