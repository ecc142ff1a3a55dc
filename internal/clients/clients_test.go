package clients

import "testing"

func TestTrimVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"5.2.6.8376", "5.2.6"},
		{"4.0.0", "4.0.0"},
		{"3.0.10.1567", "3.0.10"},
		{"10.9", "10.9"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := TrimVersion(tt.in); got != tt.want {
			t.Errorf("TrimVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCheckMinimum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current string
		minimum string
		wantErr bool
	}{
		{"equal", "4.0.0", "4.0.0", false},
		{"newer", "5.2.6.8376", "4.0.0", false},
		{"older", "3.0.10.1567", "4.0.0", true},
		{"patch newer", "4.0.1", "4.0.0", false},
		{"garbage current", "unknown", "4.0.0", true},
		{"garbage minimum", "4.0.0", "oops", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckMinimum(tt.current, tt.minimum)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckMinimum(%q, %q) error = %v, wantErr %v", tt.current, tt.minimum, err, tt.wantErr)
			}
		})
	}
}
