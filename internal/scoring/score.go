// Package scoring computes the score awarded for a validated build.
package scoring

import (
	"github.com/dyluth/kitbash/pkg/workshop"
	"go.trai.ch/zerr"
)

// Point values for each scoring rule.
const (
	PointsLevel1      = 50
	PointsLevel2      = 100
	PointsLevel3      = 150
	PointsLevel4      = 200
	BonusSpecial      = 200
	BonusComboVisual  = 100
	PenaltyPerError   = 30
	BonusCompletion   = 300
	BonusSpeed        = 150
	BonusFlawless     = 100
	BonusFirstClear   = 200
	SpeedThresholdSec = 60
)

// ErrInvalidInput is returned when a piece list is missing.
var ErrInvalidInput = zerr.New("invalid scoring input")

// Breakdown itemises how a score was reached. Total is clamped at zero, the
// other fields are the raw contributions.
type Breakdown struct {
	Pieces          int `json:"pieces"`
	ErrorPenalty    int `json:"error_penalty"`
	Completion      int `json:"completion"`
	Speed           int `json:"speed"`
	Flawless        int `json:"flawless"`
	FirstCompletion int `json:"first_completion"`
	Total           int `json:"total"`
}

// Calculate returns the score for a validated build.
// See CalculateBreakdown for the rules.
func Calculate(placed, correct []workshop.Piece, errorCount int, durationSeconds float64, firstCompletion bool) (int, error) {
	b, err := CalculateBreakdown(placed, correct, errorCount, durationSeconds, firstCompletion)
	if err != nil {
		return 0, err
	}
	return b.Total, nil
}

// CalculateBreakdown scores every piece in placed (each is assumed correct),
// subtracts PenaltyPerError per error, and adds the completion, speed, flawless
// and first-completion bonuses. correct is accepted for symmetry with the
// evaluator but only checked for presence. A nil slice is invalid input; an
// empty one is not.
func CalculateBreakdown(placed, correct []workshop.Piece, errorCount int, durationSeconds float64, firstCompletion bool) (Breakdown, error) {
	if placed == nil {
		return Breakdown{}, zerr.With(zerr.Wrap(ErrInvalidInput, "placed pieces missing"), "argument", "placed")
	}
	if correct == nil {
		return Breakdown{}, zerr.With(zerr.Wrap(ErrInvalidInput, "correct pieces missing"), "argument", "correct")
	}

	var b Breakdown
	for i := range placed {
		b.Pieces += PiecePoints(placed[i])
	}

	b.ErrorPenalty = errorCount * PenaltyPerError
	b.Completion = BonusCompletion
	if durationSeconds < SpeedThresholdSec {
		b.Speed = BonusSpeed
	}
	if errorCount == 0 {
		b.Flawless = BonusFlawless
	}
	if firstCompletion {
		b.FirstCompletion = BonusFirstClear
	}

	total := b.Pieces - b.ErrorPenalty + b.Completion + b.Speed + b.Flawless + b.FirstCompletion
	b.Total = max(total, 0)

	return b, nil
}

// PiecePoints returns the points one correctly placed piece is worth.
func PiecePoints(p workshop.Piece) int {
	points := 0
	switch p.Level {
	case 1:
		points = PointsLevel1
	case 2:
		points = PointsLevel2
	case 3:
		points = PointsLevel3
	case 4:
		points = PointsLevel4
	}

	if p.Special {
		points += BonusSpecial
	}
	if p.ComboVisual {
		points += BonusComboVisual
	}

	return points
}
