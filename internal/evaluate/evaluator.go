// Package evaluate compares submitted pieces with a character's correct set and
// caches that correct set per character.
package evaluate

import "github.com/dyluth/kitbash/pkg/workshop"

// Result is the outcome of evaluating a submission.
type Result struct {
	CorrectlyPlaced []workshop.Piece // In the correct set's canonical order
	ErrorCount      int              // Distinct submitted IDs outside the correct set
}

// Evaluate splits submitted piece IDs into correctly placed pieces and errors.
//
// Submitted IDs are de-duplicated first: a repeated correct ID is placed once
// and a repeated wrong ID is one error.
func Evaluate(submitted []string, correct []workshop.Piece) Result {
	submittedSet := make(map[string]struct{}, len(submitted))
	for _, id := range submitted {
		submittedSet[id] = struct{}{}
	}

	correctSet := make(map[string]struct{}, len(correct))
	placed := make([]workshop.Piece, 0, len(correct))
	for _, p := range correct {
		correctSet[p.ID] = struct{}{}
		if _, ok := submittedSet[p.ID]; ok {
			placed = append(placed, p)
		}
	}

	errCount := 0
	for id := range submittedSet {
		if _, ok := correctSet[id]; !ok {
			errCount++
		}
	}

	return Result{
		CorrectlyPlaced: placed,
		ErrorCount:      errCount,
	}
}

// CorrectPieces returns the character's pieces without decoys, in canonical order.
func CorrectPieces(ch *workshop.Character) []workshop.Piece {
	out := make([]workshop.Piece, 0, len(ch.Pieces))
	for _, p := range ch.Pieces {
		if p.Fake {
			continue
		}
		out = append(out, p)
	}
	return out
}
