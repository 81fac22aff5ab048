// Package baseline compares observed game metrics against statistical
// expectations for a player's title and time control.
package baseline

import (
	"fmt"
	"strings"
)

// Title is a federation skill rank. TitleOrder lists titles from strongest to
// weakest; the threshold table's monotonicity invariant is stated over this
// ordering.
type Title string

const (
	TitleSGM      Title = "SGM"
	TitleGM       Title = "GM"
	TitleIM       Title = "IM"
	TitleWGM      Title = "WGM"
	TitleFM       Title = "FM"
	TitleWIM      Title = "WIM"
	TitleCM       Title = "CM"
	TitleWFM      Title = "WFM"
	TitleNM       Title = "NM"
	TitleWCM      Title = "WCM"
	TitleUntitled Title = "UNTITLED"
)

// TitleOrder runs strongest to weakest.
var TitleOrder = []Title{
	TitleSGM, TitleGM, TitleIM, TitleWGM, TitleFM, TitleWIM,
	TitleCM, TitleWFM, TitleNM, TitleWCM, TitleUntitled,
}

// TimeControl is a normalized time-control class.
type TimeControl string

const (
	Classical TimeControl = "classical"
	Rapid     TimeControl = "rapid"
	Blitz     TimeControl = "blitz"
	Bullet    TimeControl = "bullet"
)

// TimeControls lists every supported class.
var TimeControls = []TimeControl{Classical, Rapid, Blitz, Bullet}

// TitleProfile is the expected-performance envelope for one title in one
// time control. A player inside the envelope raises no flags.
type TitleProfile struct {
	MinCPL                        float64 `toml:"min_cpl"`
	MaxCPL                        float64 `toml:"max_cpl"`
	MinAccuracy                   float64 `toml:"min_accuracy"`
	EngineAgreementSuspicious     float64 `toml:"engine_agreement_suspicious"`
	EngineAgreementVerySuspicious float64 `toml:"engine_agreement_very_suspicious"`
	Top2AgreementSuspicious       float64 `toml:"top2_agreement_suspicious"`
}

// NormalizeTitle maps an arbitrary declared title onto the known set.
// Anything unrecognized, including the empty string, is UNTITLED.
func NormalizeTitle(raw string) Title {
	t := Title(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range TitleOrder {
		if t == known {
			return known
		}
	}
	return TitleUntitled
}

// NormalizeTimeControl classifies a declared time-control string by keyword
// and common clock notations. Unrecognized strings classify as blitz, the
// most common class on online platforms.
func NormalizeTimeControl(raw string) TimeControl {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "bullet"), strings.Contains(s, "1+0"), strings.Contains(s, "2+1"):
		return Bullet
	case strings.Contains(s, "blitz"), strings.Contains(s, "3+0"), strings.Contains(s, "5+0"):
		return Blitz
	case strings.Contains(s, "rapid"), strings.Contains(s, "10+"), strings.Contains(s, "15+"):
		return Rapid
	case strings.Contains(s, "classical"), strings.Contains(s, "standard"):
		return Classical
	default:
		return Blitz
	}
}

// Table is the immutable title × time-control profile lookup. Built once at
// startup and shared read-only across all assessments.
type Table struct {
	profiles map[TimeControl]map[Title]TitleProfile
}

// NewTable validates and freezes a profile set. Every title/time-control pair
// must be present, and for each time control the profiles must be monotone
// over TitleOrder: CPL bounds non-decreasing, agreement thresholds
// non-increasing, as skill decreases.
func NewTable(profiles map[TimeControl]map[Title]TitleProfile) (*Table, error) {
	frozen := make(map[TimeControl]map[Title]TitleProfile, len(TimeControls))
	for _, tc := range TimeControls {
		row, ok := profiles[tc]
		if !ok {
			return nil, fmt.Errorf("threshold table: missing time control %q", tc)
		}
		frozenRow := make(map[Title]TitleProfile, len(TitleOrder))
		for _, title := range TitleOrder {
			p, ok := row[title]
			if !ok {
				return nil, fmt.Errorf("threshold table: missing profile for %s/%s", title, tc)
			}
			frozenRow[title] = p
		}
		if err := validateOrdering(tc, frozenRow); err != nil {
			return nil, err
		}
		frozen[tc] = frozenRow
	}
	return &Table{profiles: frozen}, nil
}

func validateOrdering(tc TimeControl, row map[Title]TitleProfile) error {
	for i := 1; i < len(TitleOrder); i++ {
		stronger := row[TitleOrder[i-1]]
		weaker := row[TitleOrder[i]]
		if weaker.MinCPL < stronger.MinCPL || weaker.MaxCPL < stronger.MaxCPL {
			return fmt.Errorf("threshold table: CPL bounds decrease from %s to %s in %s",
				TitleOrder[i-1], TitleOrder[i], tc)
		}
		if weaker.EngineAgreementSuspicious > stronger.EngineAgreementSuspicious ||
			weaker.EngineAgreementVerySuspicious > stronger.EngineAgreementVerySuspicious {
			return fmt.Errorf("threshold table: engine agreement threshold increases from %s to %s in %s",
				TitleOrder[i-1], TitleOrder[i], tc)
		}
	}
	return nil
}

// Lookup resolves the profile for a declared title and time-control string,
// applying UNTITLED and blitz fallbacks.
func (t *Table) Lookup(rawTitle, rawTimeControl string) TitleProfile {
	return t.profiles[NormalizeTimeControl(rawTimeControl)][NormalizeTitle(rawTitle)]
}

// Profile returns the profile for an already-normalized pair.
func (t *Table) Profile(title Title, tc TimeControl) TitleProfile {
	return t.profiles[tc][title]
}
