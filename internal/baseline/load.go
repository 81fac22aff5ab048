package baseline

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// LoadTableFile reads a calibration TOML file and builds a validated table.
// The file is keyed time control then title:
//
//	[classical.GM]
//	min_cpl = 10.0
//	max_cpl = 35.0
//	min_accuracy = 0.90
//	engine_agreement_suspicious = 0.80
//	engine_agreement_very_suspicious = 0.88
//	top2_agreement_suspicious = 0.93
//
// Every title/time-control pair must be present and the ordering invariant
// must hold, exactly as for the compiled-in defaults. Lookup semantics are
// unaffected by where the table came from.
func LoadTableFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read threshold calibration: %w", err)
	}

	var raw map[string]map[string]TitleProfile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse threshold calibration: %w", err)
	}

	profiles := make(map[TimeControl]map[Title]TitleProfile, len(raw))
	for tcKey, row := range raw {
		tc, ok := knownTimeControl(tcKey)
		if !ok {
			return nil, fmt.Errorf("threshold calibration: unknown time control %q", tcKey)
		}
		titled := make(map[Title]TitleProfile, len(row))
		for titleKey, p := range row {
			title, ok := knownTitle(titleKey)
			if !ok {
				return nil, fmt.Errorf("threshold calibration: unknown title %q", titleKey)
			}
			titled[title] = p
		}
		profiles[tc] = titled
	}

	table, err := NewTable(profiles)
	if err != nil {
		return nil, fmt.Errorf("threshold calibration %s: %w", path, err)
	}
	return table, nil
}

// knownTimeControl matches a calibration key against the supported classes
// without the keyword fallback Lookup applies to player-declared strings.
func knownTimeControl(key string) (TimeControl, bool) {
	for _, tc := range TimeControls {
		if string(tc) == key {
			return tc, true
		}
	}
	return "", false
}

// knownTitle matches a calibration key exactly; calibration files may not
// rely on the UNTITLED fallback.
func knownTitle(key string) (Title, bool) {
	for _, t := range TitleOrder {
		if string(t) == key {
			return t, true
		}
	}
	return "", false
}
