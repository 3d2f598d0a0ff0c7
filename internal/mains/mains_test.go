package mains

import "testing"

func TestFrequencyForTimezone(t *testing.T) {
	tests := []struct {
		timezone string
		want     int
	}{
		// 50Hz countries
		{"Europe/London", 50},
		{"Europe/Paris", 50},
		{"Europe/Berlin", 50},
		{"Australia/Sydney", 50},
		{"Asia/Shanghai", 50},
		{"Asia/Tokyo", 50}, // Japan defaults to 50Hz

		// 60Hz countries
		{"America/New_York", 60},
		{"America/Los_Angeles", 60},
		{"America/Chicago", 60},
		{"America/Toronto", 60},
		{"America/Mexico_City", 60},
		{"America/Bogota", 60},    // Colombia
		{"America/Sao_Paulo", 60}, // Brazil
		{"Asia/Seoul", 60},        // South Korea
		{"Asia/Taipei", 60},       // Taiwan
		{"Asia/Manila", 60},       // Philippines

		// Edge cases
		{"UTC", 50},
		{"GMT", 50},
		{"Etc/UTC", 50},
	}

	for _, tt := range tests {
		t.Run(tt.timezone, func(t *testing.T) {
			got := FrequencyForTimezone(tt.timezone)
			if got != tt.want {
				t.Errorf("FrequencyForTimezone(%q) = %d, want %d", tt.timezone, got, tt.want)
			}
		})
	}
}

func TestFrequency(t *testing.T) {
	// Just verify it returns a valid value without panicking
	freq := Frequency()
	if freq != 50 && freq != 60 {
		t.Errorf("Frequency() = %d, want 50 or 60", freq)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		setting string
		wantHz  int
		wantErr bool
	}{
		{"off", 0, false},
		{"", 0, false},
		{"50", 50, false},
		{"60", 60, false},
		{"60Hz", 60, false},
		{" OFF ", 0, false},
		{"55", 0, true},
		{"loud", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.setting, func(t *testing.T) {
			d, err := Resolve(tt.setting)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tt.setting, err, tt.wantErr)
			}
			if err == nil && d.Hz != tt.wantHz {
				t.Errorf("Resolve(%q).Hz = %d, want %d", tt.setting, d.Hz, tt.wantHz)
			}
		})
	}
}

func TestResolveAuto(t *testing.T) {
	d, err := Resolve("auto")
	if err != nil {
		t.Fatalf("Resolve(auto) error = %v", err)
	}
	if d.Hz != 50 && d.Hz != 60 {
		t.Errorf("Resolve(auto).Hz = %d, want 50 or 60", d.Hz)
	}
}

func TestDetectForTimezoneCountry(t *testing.T) {
	d := detectForTimezone("America/Chicago")
	if d.Country != "United States" || d.Source != SettingAuto {
		t.Errorf("detectForTimezone(America/Chicago) = %+v", d)
	}

	d = detectForTimezone("Etc/UTC")
	if d.Source != "fallback" || d.Country != "" {
		t.Errorf("detectForTimezone(Etc/UTC) = %+v", d)
	}
}

func TestHarmonics(t *testing.T) {
	got := Harmonics(60, 4, 200)
	want := []float64{60, 120, 180}
	if len(got) != len(want) {
		t.Fatalf("Harmonics(60, 4, 200) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Harmonics[%d] = %g, want %g", i, got[i], want[i])
		}
	}

	if h := Harmonics(50, 0, 1000); len(h) != 0 {
		t.Errorf("Harmonics with n=0 = %v, want empty", h)
	}
}
