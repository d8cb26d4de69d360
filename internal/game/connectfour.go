package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

const (
	connectFourRows = 6
	connectFourCols = 7
	connectFourRun  = 4
)

// ConnectFourState is a 6x7 board with gravity. Row 0 is the top row; discs
// settle on the highest occupied row of their column.
type ConnectFourState struct {
	Board         [connectFourRows][connectFourCols]int `json:"board"`
	CurrentPlayer int                                   `json:"current_player"`
	Winner        int                                   `json:"winner"`
	IsDraw        bool                                  `json:"is_draw"`
	WinningCells  []Cell                                `json:"winning_cells,omitempty"`
	LastMove      *Cell                                 `json:"last_move,omitempty"`
}

type ConnectFourMove struct {
	Column int `json:"column"`
}

func (ConnectFourMove) isMove() {}

func (s *ConnectFourState) Turn() int    { return s.CurrentPlayer }
func (s *ConnectFourState) Players() int { return 2 }

func (s *ConnectFourState) Clone() State {
	clone := *s
	if s.WinningCells != nil {
		clone.WinningCells = append([]Cell(nil), s.WinningCells...)
	}
	if s.LastMove != nil {
		last := *s.LastMove
		clone.LastMove = &last
	}
	return &clone
}

func (s *ConnectFourState) Public() State { return s.Clone() }

func (s *ConnectFourState) withTurn(player int) State {
	clone := s.Clone().(*ConnectFourState)
	clone.CurrentPlayer = player
	return clone
}

type connectFourRules struct{}

func (connectFourRules) Type() Type { return ConnectFour }

func (connectFourRules) NewState(players int, _ *rand.Rand) (State, error) {
	if players != 2 {
		return nil, fmt.Errorf("connect_four takes exactly 2 players, got %d", players)
	}
	return &ConnectFourState{CurrentPlayer: 1}, nil
}

func (connectFourRules) DecodeState(raw []byte) (State, error) {
	var s ConnectFourState
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (connectFourRules) DecodeMove(raw []byte) (Move, error) {
	var m ConnectFourMove
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	return m, nil
}

func (r connectFourRules) Apply(s State, m Move, player int) (State, error) {
	state, ok := s.(*ConnectFourState)
	if !ok {
		return nil, fmt.Errorf("%w: wrong state type", ErrIllegalMove)
	}
	move, ok := m.(ConnectFourMove)
	if !ok {
		return nil, fmt.Errorf("%w: wrong move type", ErrIllegalMove)
	}
	if player != state.CurrentPlayer {
		return nil, fmt.Errorf("%w: player %d moved on player %d's turn", ErrOutOfTurn, player, state.CurrentPlayer)
	}
	if move.Column < 0 || move.Column >= connectFourCols {
		return nil, fmt.Errorf("%w: column %d out of range", ErrIllegalMove, move.Column)
	}
	row := dropRow(&state.Board, move.Column)
	if row < 0 {
		return nil, fmt.Errorf("%w: column %d is full", ErrIllegalMove, move.Column)
	}

	next := state.Clone().(*ConnectFourState)
	next.Board[row][move.Column] = player
	next.LastMove = &Cell{Row: row, Col: move.Column}
	next.WinningCells = connectFourRunFrom(&next.Board, row, move.Column)
	if next.WinningCells != nil {
		next.Winner = player
	}
	next.IsDraw = next.Winner == 0 && connectFourFull(&next.Board)
	next.CurrentPlayer = opponent(player)
	return next, nil
}

func (connectFourRules) Outcome(s State) Outcome {
	state, ok := s.(*ConnectFourState)
	if !ok {
		return Outcome{}
	}
	return Outcome{Winner: state.Winner, Draw: state.IsDraw}
}

// LegalMoves enumerates non-full columns in ascending order.
func (connectFourRules) LegalMoves(s State) []Move {
	state, ok := s.(*ConnectFourState)
	if !ok {
		return nil
	}
	var moves []Move
	for col := 0; col < connectFourCols; col++ {
		if state.Board[0][col] == 0 {
			moves = append(moves, ConnectFourMove{Column: col})
		}
	}
	return moves
}

// PositionScore values a cut-off search position by center-column control;
// center discs participate in the most potential runs. Bounded well inside
// the win scores.
func (connectFourRules) PositionScore(s State, player int) int {
	state, ok := s.(*ConnectFourState)
	if !ok {
		return 0
	}
	center := connectFourCols / 2
	score := 0
	for row := 0; row < connectFourRows; row++ {
		switch state.Board[row][center] {
		case player:
			score += 4
		case opponent(player):
			score -= 4
		}
	}
	return score
}

// dropRow returns the row a disc dropped into col settles on, or -1 when the
// column is full.
func dropRow(board *[connectFourRows][connectFourCols]int, col int) int {
	for row := connectFourRows - 1; row >= 0; row-- {
		if board[row][col] == 0 {
			return row
		}
	}
	return -1
}

// connectFourRunFrom checks the four line directions through the most
// recently placed cell and returns the winning run, or nil.
func connectFourRunFrom(board *[connectFourRows][connectFourCols]int, row, col int) []Cell {
	mark := board[row][col]
	if mark == 0 {
		return nil
	}
	directions := [4][2]int{
		{0, 1},  // horizontal
		{1, 0},  // vertical
		{1, 1},  // diagonal down-right
		{1, -1}, // diagonal down-left
	}
	for _, dir := range directions {
		run := []Cell{{Row: row, Col: col}}
		for sign := -1; sign <= 1; sign += 2 {
			r, c := row+sign*dir[0], col+sign*dir[1]
			for r >= 0 && r < connectFourRows && c >= 0 && c < connectFourCols && board[r][c] == mark {
				run = append(run, Cell{Row: r, Col: c})
				r += sign * dir[0]
				c += sign * dir[1]
			}
		}
		if len(run) >= connectFourRun {
			return run
		}
	}
	return nil
}

func connectFourFull(board *[connectFourRows][connectFourCols]int) bool {
	for col := 0; col < connectFourCols; col++ {
		if board[0][col] == 0 {
			return false
		}
	}
	return true
}
