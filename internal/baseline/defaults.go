package baseline

// Shipped calibration. The classical envelopes are explicit per title; the
// faster controls are derived by uniform offsets (more centipawn loss
// tolerated, less engine agreement expected), which preserves the table's
// monotonicity invariant by construction. These constants are heuristic
// placeholders pending empirical validation against rated-game corpora.

var classicalProfiles = map[Title]TitleProfile{
	TitleSGM:      {MinCPL: 8, MaxCPL: 32, MinAccuracy: 0.92, EngineAgreementSuspicious: 0.82, EngineAgreementVerySuspicious: 0.90, Top2AgreementSuspicious: 0.95},
	TitleGM:       {MinCPL: 10, MaxCPL: 35, MinAccuracy: 0.90, EngineAgreementSuspicious: 0.80, EngineAgreementVerySuspicious: 0.88, Top2AgreementSuspicious: 0.93},
	TitleIM:       {MinCPL: 13, MaxCPL: 38, MinAccuracy: 0.87, EngineAgreementSuspicious: 0.77, EngineAgreementVerySuspicious: 0.85, Top2AgreementSuspicious: 0.91},
	TitleWGM:      {MinCPL: 15, MaxCPL: 41, MinAccuracy: 0.85, EngineAgreementSuspicious: 0.75, EngineAgreementVerySuspicious: 0.83, Top2AgreementSuspicious: 0.90},
	TitleFM:       {MinCPL: 17, MaxCPL: 44, MinAccuracy: 0.83, EngineAgreementSuspicious: 0.73, EngineAgreementVerySuspicious: 0.81, Top2AgreementSuspicious: 0.89},
	TitleWIM:      {MinCPL: 19, MaxCPL: 47, MinAccuracy: 0.81, EngineAgreementSuspicious: 0.71, EngineAgreementVerySuspicious: 0.79, Top2AgreementSuspicious: 0.88},
	TitleCM:       {MinCPL: 21, MaxCPL: 50, MinAccuracy: 0.79, EngineAgreementSuspicious: 0.69, EngineAgreementVerySuspicious: 0.77, Top2AgreementSuspicious: 0.87},
	TitleWFM:      {MinCPL: 23, MaxCPL: 53, MinAccuracy: 0.77, EngineAgreementSuspicious: 0.67, EngineAgreementVerySuspicious: 0.75, Top2AgreementSuspicious: 0.86},
	TitleNM:       {MinCPL: 25, MaxCPL: 56, MinAccuracy: 0.75, EngineAgreementSuspicious: 0.65, EngineAgreementVerySuspicious: 0.73, Top2AgreementSuspicious: 0.85},
	TitleWCM:      {MinCPL: 28, MaxCPL: 60, MinAccuracy: 0.72, EngineAgreementSuspicious: 0.62, EngineAgreementVerySuspicious: 0.70, Top2AgreementSuspicious: 0.83},
	TitleUntitled: {MinCPL: 32, MaxCPL: 65, MinAccuracy: 0.68, EngineAgreementSuspicious: 0.58, EngineAgreementVerySuspicious: 0.66, Top2AgreementSuspicious: 0.80},
}

type controlOffset struct {
	cpl       float64
	accuracy  float64
	agreement float64
}

var controlOffsets = map[TimeControl]controlOffset{
	Classical: {},
	Rapid:     {cpl: 3, accuracy: 0.02, agreement: 0.02},
	Blitz:     {cpl: 6, accuracy: 0.04, agreement: 0.04},
	Bullet:    {cpl: 10, accuracy: 0.07, agreement: 0.06},
}

// DefaultProfiles expands the classical envelopes across every time control.
func DefaultProfiles() map[TimeControl]map[Title]TitleProfile {
	out := make(map[TimeControl]map[Title]TitleProfile, len(TimeControls))
	for _, tc := range TimeControls {
		off := controlOffsets[tc]
		row := make(map[Title]TitleProfile, len(TitleOrder))
		for title, p := range classicalProfiles {
			row[title] = TitleProfile{
				MinCPL:                        p.MinCPL + off.cpl,
				MaxCPL:                        p.MaxCPL + off.cpl,
				MinAccuracy:                   p.MinAccuracy - off.accuracy,
				EngineAgreementSuspicious:     p.EngineAgreementSuspicious - off.agreement,
				EngineAgreementVerySuspicious: p.EngineAgreementVerySuspicious - off.agreement,
				Top2AgreementSuspicious:       p.Top2AgreementSuspicious - off.agreement,
			}
		}
		out[tc] = row
	}
	return out
}

// DefaultTable builds the shipped threshold table. The defaults satisfy the
// ordering invariant, so construction cannot fail; a panic here means the
// compiled-in constants were edited into an invalid state.
func DefaultTable() *Table {
	t, err := NewTable(DefaultProfiles())
	if err != nil {
		panic(err)
	}
	return t
}
