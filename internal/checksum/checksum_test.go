package checksum

import "testing"

func TestSum(t *testing.T) {
	got := Sum([]byte("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("Sum = %q, want %q", got, want)
	}
}

func TestMatches(t *testing.T) {
	data := []byte("abc")
	sum := Sum(data)
	tests := []struct {
		ifMatch string
		want    bool
	}{
		{"", true},
		{"*", true},
		{sum, true},
		{`"` + sum + `"`, true},
		{"stale", false},
	}
	for _, tt := range tests {
		if got := Matches(data, tt.ifMatch); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.ifMatch, got, tt.want)
		}
	}
}
