// Package derive computes the aurora likelihood tier and the overall viewing
// condition from normalized feed records. Every function here is pure.
package derive

import (
	"fmt"
	"strconv"

	"aurorawatch/internal/models"
)

// Likelihood tier labels, most favorable first.
const (
	LikelihoodHigh        = "High - Visible at mid-latitudes"
	LikelihoodElevated    = "Elevated - Visible at higher mid-latitudes"
	LikelihoodModerate    = "Moderate - Visible at high latitudes"
	LikelihoodLowModerate = "Low to Moderate - Possible at high latitudes"
	LikelihoodBaseline    = "Low - Visible near polar regions"
)

// LikelihoodRule is one row of the likelihood table.
type LikelihoodRule struct {
	Tier  string
	Rank  int
	Match func(sw *models.SolarWindRecord) bool
}

// PointsRule awards Points when a value is at or above Min.
type PointsRule struct {
	Min    float64
	Points int
}

// StatusRule maps a minimum score to a condition status.
type StatusRule struct {
	MinScore int
	Status   models.ConditionStatus
}

// Result is the output of a derivation.
type Result struct {
	Likelihood     string
	LikelihoodRank int
	Status         models.ConditionStatus
	Score          int
}

// Engine evaluates the ordered rule tables built from a Thresholds value.
type Engine struct {
	thresholds Thresholds
	likelihood []LikelihoodRule
	kpPoints   []PointsRule
	gPoints    []PointsRule
	status     []StatusRule
}

// NewEngine validates the thresholds and builds the rule tables.
func NewEngine(t Thresholds) (*Engine, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}

	e := &Engine{thresholds: t}

	e.likelihood = []LikelihoodRule{
		{Tier: LikelihoodHigh, Rank: 4, Match: func(sw *models.SolarWindRecord) bool {
			return sw.Bz <= t.HighBz && sw.Speed > t.HighSpeed
		}},
		{Tier: LikelihoodElevated, Rank: 3, Match: func(sw *models.SolarWindRecord) bool {
			return sw.Bz <= t.ElevatedBz && (sw.Speed >= t.ElevatedSpeed || sw.Density >= t.ElevatedDensity)
		}},
		{Tier: LikelihoodModerate, Rank: 3, Match: func(sw *models.SolarWindRecord) bool {
			return sw.Bz <= t.ModerateBz
		}},
		{Tier: LikelihoodLowModerate, Rank: 2, Match: func(sw *models.SolarWindRecord) bool {
			return sw.Bz < t.LowModerateBz && sw.Speed >= t.LowModerateSpeed
		}},
		{Tier: LikelihoodBaseline, Rank: 0, Match: func(*models.SolarWindRecord) bool { return true }},
	}

	e.kpPoints = []PointsRule{
		{Min: t.KpStrong, Points: 3},
		{Min: t.KpActive, Points: 2},
		{Min: t.KpUnsettled, Points: 1},
	}

	e.gPoints = []PointsRule{
		{Min: float64(t.GStrong), Points: 2},
		{Min: float64(t.GMinor), Points: 1},
	}

	e.status = []StatusRule{
		{MinScore: t.ScoreExcellent, Status: models.ConditionExcellent},
		{MinScore: t.ScoreGood, Status: models.ConditionGood},
		{MinScore: t.ScoreFair, Status: models.ConditionFair},
		{MinScore: 0, Status: models.ConditionPoor},
	}

	return e, nil
}

// Thresholds returns the constants the engine was built from.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// LikelihoodRules returns a copy of the likelihood table in evaluation order.
func (e *Engine) LikelihoodRules() []LikelihoodRule {
	return append([]LikelihoodRule(nil), e.likelihood...)
}

// Likelihood returns the first matching tier and its rank. An absent
// solar wind record yields the baseline.
func (e *Engine) Likelihood(sw *models.SolarWindRecord) (string, int) {
	if sw == nil {
		return LikelihoodBaseline, 0
	}
	for _, rule := range e.likelihood {
		if rule.Match(sw) {
			return rule.Tier, rule.Rank
		}
	}
	return LikelihoodBaseline, 0
}

// KpPoints scores the K-index contribution; absent is 0.
func (e *Engine) KpPoints(kp *models.KpIndexRecord) int {
	if kp == nil {
		return 0
	}
	return points(e.kpPoints, kp.Kp)
}

// GPoints scores the G-scale contribution; absent or non-numeric is 0.
func (e *Engine) GPoints(scales *models.NoaaScaleRecord) int {
	if scales == nil {
		return 0
	}
	g, err := strconv.Atoi(scales.GScale)
	if err != nil {
		return 0
	}
	return points(e.gPoints, float64(g))
}

// Status maps a composite score to a condition status.
func (e *Engine) Status(score int) models.ConditionStatus {
	for _, rule := range e.status {
		if score >= rule.MinScore {
			return rule.Status
		}
	}
	return models.ConditionPoor
}

// Derive computes likelihood and condition for the given records, any of
// which may be nil.
func (e *Engine) Derive(sw *models.SolarWindRecord, kp *models.KpIndexRecord, scales *models.NoaaScaleRecord) Result {
	tier, rank := e.Likelihood(sw)
	score := e.KpPoints(kp) + e.GPoints(scales) + rank
	return Result{
		Likelihood:     tier,
		LikelihoodRank: rank,
		Status:         e.Status(score),
		Score:          score,
	}
}

func points(rules []PointsRule, v float64) int {
	for _, rule := range rules {
		if v >= rule.Min {
			return rule.Points
		}
	}
	return 0
}
