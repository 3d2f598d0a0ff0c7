// Package mains resolves the electrical mains frequency whose hum the
// dehum filter removes, either from a fixed setting or the system timezone.
package mains

import (
	"fmt"
	"strconv"
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// Hum removal settings accepted by Resolve
const (
	SettingAuto = "auto"
	SettingOff  = "off"
)

// fallbackHz is used when the timezone gives no answer; 50Hz is more common globally
const fallbackHz = 50

// Detection describes how a mains frequency was chosen
type Detection struct {
	Hz       int    // 0 when hum removal is off
	Timezone string // set for auto detection
	Country  string // set when the timezone maps to a country
	Source   string // "auto", "fixed", "off" or "fallback"
}

// Resolve turns a --dehum setting ("auto", "off", "50", "60") into a frequency
func Resolve(setting string) (Detection, error) {
	switch s := strings.ToLower(strings.TrimSpace(setting)); s {
	case "", SettingOff:
		return Detection{Source: SettingOff}, nil
	case SettingAuto:
		return Detect(), nil
	default:
		hz, err := strconv.Atoi(strings.TrimSuffix(s, "hz"))
		if err != nil || (hz != 50 && hz != 60) {
			return Detection{}, fmt.Errorf("invalid dehum setting %q: want auto, off, 50 or 60", setting)
		}
		return Detection{Hz: hz, Source: "fixed"}, nil
	}
}

// Detect resolves the frequency from the system timezone
func Detect() Detection {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return Detection{Hz: fallbackHz, Source: "fallback"}
	}
	return detectForTimezone(timezone)
}

// Frequency returns the local mains frequency in Hz (50 or 60).
// Returns 50Hz if detection fails or timezone is ambiguous.
func Frequency() int {
	return Detect().Hz
}

// FrequencyForTimezone returns the mains frequency for a given IANA timezone.
func FrequencyForTimezone(timezone string) int {
	return detectForTimezone(timezone).Hz
}

func detectForTimezone(timezone string) Detection {
	d := Detection{Hz: fallbackHz, Timezone: timezone, Source: "fallback"}

	// UTC/GMT have no country association
	if timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return d
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return d
	}

	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return d
	}

	d.Country = country
	d.Hz = frequencyForCountry(country)
	d.Source = SettingAuto
	return d
}

// Harmonics lists the fundamental and its first n-1 multiples that stay
// below limit Hz (typically a fraction of Nyquist).
func Harmonics(fundamental, n int, limit float64) []float64 {
	var out []float64
	for h := 1; h <= n; h++ {
		f := float64(fundamental * h)
		if f >= limit {
			break
		}
		out = append(out, f)
	}
	return out
}

// frequencyForCountry returns the mains frequency for a country name.
// Returns 50Hz for unknown countries (more common globally).
func frequencyForCountry(country string) int {
	// Japan special case: split 50/60Hz by region
	// Default to 50Hz (Tokyo region is most populous)
	if country == "Japan" {
		return fallbackHz
	}

	if hz60Countries[country] {
		return 60
	}
	return fallbackHz
}

// hz60Countries lists countries using 60Hz mains power.
// All other countries use 50Hz.
// Source: https://en.wikipedia.org/wiki/Mains_electricity_by_country
var hz60Countries = map[string]bool{
	// North America
	"United States": true,
	"Canada":        true,
	"Mexico":        true,

	// Central America
	"Belize":      true,
	"Costa Rica":  true,
	"El Salvador": true,
	"Guatemala":   true,
	"Honduras":    true,
	"Nicaragua":   true,
	"Panama":      true,

	// Caribbean
	"Bahamas":             true,
	"Barbados":            true,
	"Cayman Islands":      true,
	"Cuba":                true,
	"Dominican Republic":  true,
	"Haiti":               true,
	"Jamaica":             true,
	"Puerto Rico":         true,
	"Trinidad and Tobago": true,
	"U.S. Virgin Islands": true,

	// South America (partial, most use 50Hz)
	"Brazil":    true, // Note: Brazil has both 50Hz and 60Hz regions; 60Hz predominant
	"Colombia":  true,
	"Ecuador":   true,
	"Guyana":    true,
	"Peru":      true,
	"Suriname":  true,
	"Venezuela": true,

	// Asia (partial)
	"South Korea":  true,
	"Taiwan":       true,
	"Philippines":  true,
	"Saudi Arabia": true,

	// Pacific
	"Guam":             true,
	"American Samoa":   true,
	"Marshall Islands": true,
	"Micronesia":       true,
	"Palau":            true,
}
