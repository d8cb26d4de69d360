package game

import (
	"errors"
	"math/rand"
)

type Type string

const (
	TicTacToe   Type = "tic_tac_toe"
	ConnectFour Type = "connect_four"
	Wordle      Type = "wordle"
)

var (
	ErrUnknownGame = errors.New("unknown game type")
	ErrIllegalMove = errors.New("illegal move")
	ErrOutOfTurn   = errors.New("out of turn")
	ErrNoLegalMove = errors.New("no legal move")
)

func (t Type) Valid() bool {
	switch t {
	case TicTacToe, ConnectFour, Wordle:
		return true
	}
	return false
}

// PlayerLimits returns the allowed active-participant range for a game type.
func (t Type) PlayerLimits() (min, max int) {
	if t == Wordle {
		return 2, 10
	}
	return 2, 2
}

// SupportsBots reports whether bot participants can play this game type.
// Wordle has an unbounded move space, so there is no bot tier for it.
func (t Type) SupportsBots() bool {
	return t == TicTacToe || t == ConnectFour
}

// Cell addresses one board position.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Outcome is the terminal status of a state. Winner is 0 while the game is
// still running or drawn.
type Outcome struct {
	Winner int
	Draw   bool
}

func (o Outcome) Terminal() bool {
	return o.Winner != 0 || o.Draw
}

// State is one game's full position. Implementations are value-clonable so
// search and hypothetical evaluation never mutate a shared board.
type State interface {
	// Turn is the player number expected to act next.
	Turn() int
	// Players is the number of seats this state was created for.
	Players() int
	// Clone returns an independent deep copy.
	Clone() State
	// Public returns a copy safe to hand to clients (hidden fields redacted).
	Public() State

	// withTurn returns a copy with the turn pointer overridden. Used for
	// hypothetical "would this player win" evaluation.
	withTurn(player int) State
}

// Move is a game-specific move payload.
type Move interface {
	isMove()
}

// Rules is the per-game-type logic: applying moves, detecting outcomes and
// enumerating candidates. Implementations are stateless and safe for
// concurrent use.
type Rules interface {
	Type() Type
	// NewState builds the canonical initial state. The rng is only consulted
	// by game types with randomized setup.
	NewState(players int, rng *rand.Rand) (State, error)
	DecodeState(raw []byte) (State, error)
	DecodeMove(raw []byte) (Move, error)
	// Apply validates and applies a move for player, returning a new state.
	// The input state is never mutated.
	Apply(s State, m Move, player int) (State, error)
	Outcome(s State) Outcome
	// LegalMoves enumerates candidates in a stable order; bot tie-breaking
	// depends on it. Nil when the move space cannot be enumerated.
	LegalMoves(s State) []Move
}

func RulesFor(t Type) (Rules, error) {
	switch t {
	case TicTacToe:
		return ticTacToeRules{}, nil
	case ConnectFour:
		return connectFourRules{}, nil
	case Wordle:
		return wordleRules{}, nil
	}
	return nil, ErrUnknownGame
}

func opponent(player int) int {
	if player == 1 {
		return 2
	}
	return 1
}
