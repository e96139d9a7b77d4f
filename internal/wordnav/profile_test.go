package wordnav

import "testing"

func TestParseProfileAcceptsKnownNames(t *testing.T) {
	cases := map[string]Profile{"chrome": Chrome, "": Chrome, "compatible": Compatible}
	for name, want := range cases {
		got, err := ParseProfile(name)
		if err != nil {
			t.Fatalf("ParseProfile(%q) returned error: %v", name, err)
		}
		if got != want {
			t.Errorf("ParseProfile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestParseProfileRejectsUnknownName(t *testing.T) {
	if _, err := ParseProfile("firefox"); err == nil {
		t.Fatal("expected an error for an unknown profile name")
	}
}

func TestProfileStringRoundTripsThroughParseProfile(t *testing.T) {
	for _, p := range []Profile{Chrome, Compatible} {
		got, err := ParseProfile(p.String())
		if err != nil || got != p {
			t.Errorf("ParseProfile(%q) = %v, %v; want %v, nil", p.String(), got, err, p)
		}
	}
}
