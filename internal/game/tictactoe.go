package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// TicTacToeState is a 3x3 board. Cells hold 0 (empty), 1 or 2.
type TicTacToeState struct {
	Board         [3][3]int `json:"board"`
	CurrentPlayer int       `json:"current_player"`
	Winner        int       `json:"winner"`
	IsDraw        bool      `json:"is_draw"`
	WinningLine   []Cell    `json:"winning_line,omitempty"`
}

type TicTacToeMove struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (TicTacToeMove) isMove() {}

func (s *TicTacToeState) Turn() int    { return s.CurrentPlayer }
func (s *TicTacToeState) Players() int { return 2 }

func (s *TicTacToeState) Clone() State {
	clone := *s
	if s.WinningLine != nil {
		clone.WinningLine = append([]Cell(nil), s.WinningLine...)
	}
	return &clone
}

func (s *TicTacToeState) Public() State { return s.Clone() }

func (s *TicTacToeState) withTurn(player int) State {
	clone := s.Clone().(*TicTacToeState)
	clone.CurrentPlayer = player
	return clone
}

type ticTacToeRules struct{}

func (ticTacToeRules) Type() Type { return TicTacToe }

func (ticTacToeRules) NewState(players int, _ *rand.Rand) (State, error) {
	if players != 2 {
		return nil, fmt.Errorf("tic_tac_toe takes exactly 2 players, got %d", players)
	}
	return &TicTacToeState{CurrentPlayer: 1}, nil
}

func (ticTacToeRules) DecodeState(raw []byte) (State, error) {
	var s TicTacToeState
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (ticTacToeRules) DecodeMove(raw []byte) (Move, error) {
	var m TicTacToeMove
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	return m, nil
}

func (r ticTacToeRules) Apply(s State, m Move, player int) (State, error) {
	state, ok := s.(*TicTacToeState)
	if !ok {
		return nil, fmt.Errorf("%w: wrong state type", ErrIllegalMove)
	}
	move, ok := m.(TicTacToeMove)
	if !ok {
		return nil, fmt.Errorf("%w: wrong move type", ErrIllegalMove)
	}
	if player != state.CurrentPlayer {
		return nil, fmt.Errorf("%w: player %d moved on player %d's turn", ErrOutOfTurn, player, state.CurrentPlayer)
	}
	if move.Row < 0 || move.Row > 2 || move.Col < 0 || move.Col > 2 {
		return nil, fmt.Errorf("%w: cell (%d,%d) out of range", ErrIllegalMove, move.Row, move.Col)
	}
	if state.Board[move.Row][move.Col] != 0 {
		return nil, fmt.Errorf("%w: cell (%d,%d) is occupied", ErrIllegalMove, move.Row, move.Col)
	}

	next := state.Clone().(*TicTacToeState)
	next.Board[move.Row][move.Col] = player
	next.Winner, next.WinningLine = ticTacToeWinner(next.Board)
	next.IsDraw = next.Winner == 0 && ticTacToeFull(next.Board)
	next.CurrentPlayer = opponent(player)
	return next, nil
}

func (ticTacToeRules) Outcome(s State) Outcome {
	state, ok := s.(*TicTacToeState)
	if !ok {
		return Outcome{}
	}
	return Outcome{Winner: state.Winner, Draw: state.IsDraw}
}

// LegalMoves enumerates empty cells in row-major order.
func (ticTacToeRules) LegalMoves(s State) []Move {
	state, ok := s.(*TicTacToeState)
	if !ok {
		return nil
	}
	var moves []Move
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			if state.Board[row][col] == 0 {
				moves = append(moves, TicTacToeMove{Row: row, Col: col})
			}
		}
	}
	return moves
}

// CenterMove implements the medium-tier center preference.
func (ticTacToeRules) CenterMove(s State) (Move, bool) {
	state, ok := s.(*TicTacToeState)
	if !ok || state.Board[1][1] != 0 {
		return nil, false
	}
	return TicTacToeMove{Row: 1, Col: 1}, true
}

// ticTacToeLines is the 8 possible winning lines: 3 rows, 3 columns and the
// 2 diagonals.
var ticTacToeLines = [8][3]Cell{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

func ticTacToeWinner(board [3][3]int) (int, []Cell) {
	for _, line := range ticTacToeLines {
		a, b, c := line[0], line[1], line[2]
		mark := board[a.Row][a.Col]
		if mark != 0 && mark == board[b.Row][b.Col] && mark == board[c.Row][c.Col] {
			return mark, []Cell{a, b, c}
		}
	}
	return 0, nil
}

func ticTacToeFull(board [3][3]int) bool {
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			if board[row][col] == 0 {
				return false
			}
		}
	}
	return true
}
