package provider

import "testing"

func TestSignContent(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		want   string
	}{
		{
			name:   "Sorted by byte order",
			params: map[string]string{"b": "2", "a": "1", "c": "3"},
			want:   "a=1&b=2&c=3",
		},
		{
			name:   "Reserved keys excluded",
			params: map[string]string{"a": "1", "sign": "abc", "sign_type": "RSA2"},
			want:   "a=1",
		},
		{
			name:   "Empty values excluded",
			params: map[string]string{"a": "1", "b": "", "c": "3"},
			want:   "a=1&c=3",
		},
		{
			name:   "Zero is a meaningful value",
			params: map[string]string{"a": "0", "b": "1"},
			want:   "a=0&b=1",
		},
		{
			name:   "Single pair has no separator",
			params: map[string]string{"amount": "100"},
			want:   "amount=100",
		},
		{
			name:   "Empty map",
			params: map[string]string{},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SignContent(tt.params); got != tt.want {
				t.Errorf("SignContent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSignContent_Deterministic(t *testing.T) {
	params := map[string]string{
		"trade_no": "T1",
		"amount":   "100",
		"subject":  "order",
	}

	first := SignContent(params)
	// Rebuild the map in a different insertion order
	permuted := map[string]string{}
	permuted["subject"] = "order"
	permuted["amount"] = "100"
	permuted["trade_no"] = "T1"

	for i := 0; i < 50; i++ {
		if got := SignContent(permuted); got != first {
			t.Fatalf("SignContent() not deterministic: %q != %q", got, first)
		}
	}

	if first != "amount=100&subject=order&trade_no=T1" {
		t.Errorf("unexpected canonical string: %q", first)
	}
}

func TestMajorUnitString(t *testing.T) {
	tests := []struct {
		minor int64
		want  string
	}{
		{12345, "123.45"},
		{5000, "50.00"},
		{1, "0.01"},
		{100, "1.00"},
		{0, "0.00"},
		{-150, "-1.50"},
	}

	for _, tt := range tests {
		if got := MajorUnitString(tt.minor); got != tt.want {
			t.Errorf("MajorUnitString(%d) = %q, want %q", tt.minor, got, tt.want)
		}
	}
}
