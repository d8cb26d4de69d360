package game

import (
	"fmt"
	"math/rand"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// Search is exact for tic-tac-toe (at most 9 plies). Connect four's full
// tree is intractable, so it is cut off and the residual position scored
// heuristically. Heuristic scores must stay well below winScore-limit so a
// real win always outranks a good-looking position.
const (
	ticTacToeSearchDepth   = 10
	connectFourSearchDepth = 6

	winScore = 1000
)

func searchDepth(t Type) int {
	if t == ConnectFour {
		return connectFourSearchDepth
	}
	return ticTacToeSearchDepth
}

// centerMover is implemented by rules with a medium-tier center preference.
type centerMover interface {
	CenterMove(s State) (Move, bool)
}

// positionScorer is implemented by rules that can value a non-terminal
// position at the search cutoff.
type positionScorer interface {
	PositionScore(s State, player int) int
}

// ChooseMove picks a legal move for player at the given difficulty. The rng
// is the only source of randomness, so seeded callers get reproducible play.
// Callers must not invoke it on a terminal state.
func ChooseMove(r Rules, s State, player int, d Difficulty, rng *rand.Rand) (Move, error) {
	moves := r.LegalMoves(s)
	if len(moves) == 0 {
		return nil, fmt.Errorf("%w: %s board has no open moves", ErrNoLegalMove, r.Type())
	}
	switch d {
	case Hard:
		return minimaxMove(r, s, player, moves)
	case Medium:
		return mediumMove(r, s, player, moves, rng), nil
	default:
		return moves[rng.Intn(len(moves))], nil
	}
}

// mediumMove wins if a single move wins, blocks if the opponent could win
// next turn, prefers the center, and otherwise plays randomly.
func mediumMove(r Rules, s State, player int, moves []Move, rng *rand.Rand) Move {
	if m, ok := findWinningMove(r, s, player, moves); ok {
		return m
	}
	if m, ok := findWinningMove(r, s, opponent(player), moves); ok {
		return m
	}
	if cm, ok := r.(centerMover); ok {
		if m, ok := cm.CenterMove(s); ok {
			return m
		}
	}
	return moves[rng.Intn(len(moves))]
}

// findWinningMove returns a move that immediately wins for mover. Candidates
// are evaluated against hypothetical copies; the input state is untouched.
func findWinningMove(r Rules, s State, mover int, moves []Move) (Move, bool) {
	for _, m := range moves {
		next, err := r.Apply(s.withTurn(mover), m, mover)
		if err != nil {
			continue
		}
		if r.Outcome(next).Winner == mover {
			return m, true
		}
	}
	return nil, false
}

// minimaxMove runs alpha-beta search to the game type's depth limit. A win
// for player scores winScore-depth, a loss depth-winScore, a draw 0; the
// first candidate (in LegalMoves order) with the best backed-up score is
// chosen.
func minimaxMove(r Rules, s State, player int, moves []Move) (Move, error) {
	limit := searchDepth(r.Type())
	best := -1 << 30
	var bestMove Move
	for _, m := range moves {
		next, err := r.Apply(s, m, player)
		if err != nil {
			return nil, err
		}
		score := minimaxScore(r, next, 0, false, player, best, 1<<30, limit)
		if score > best {
			best = score
			bestMove = m
		}
	}
	return bestMove, nil
}

func minimaxScore(r Rules, s State, depth int, maximizing bool, player, alpha, beta, limit int) int {
	out := r.Outcome(s)
	switch {
	case out.Winner == player:
		return winScore - depth
	case out.Winner == opponent(player):
		return depth - winScore
	case out.Draw:
		return 0
	}
	moves := r.LegalMoves(s)
	if len(moves) == 0 {
		return 0
	}
	if depth >= limit {
		if scorer, ok := r.(positionScorer); ok {
			return scorer.PositionScore(s, player)
		}
		return 0
	}

	if maximizing {
		best := -1 << 30
		for _, m := range moves {
			next, err := r.Apply(s, m, player)
			if err != nil {
				continue
			}
			score := minimaxScore(r, next, depth+1, false, player, alpha, beta, limit)
			if score > best {
				best = score
			}
			if best > alpha {
				alpha = best
			}
			if alpha >= beta {
				break
			}
		}
		return best
	}
	best := 1 << 30
	for _, m := range moves {
		next, err := r.Apply(s, m, opponent(player))
		if err != nil {
			continue
		}
		score := minimaxScore(r, next, depth+1, true, player, alpha, beta, limit)
		if score < best {
			best = score
		}
		if best < beta {
			beta = best
		}
		if alpha >= beta {
			break
		}
	}
	return best
}
