package game

import (
	"errors"
	"testing"
)

func mustRules(t *testing.T, gameType Type) Rules {
	t.Helper()
	rules, err := RulesFor(gameType)
	if err != nil {
		t.Fatalf("rules for %s: %v", gameType, err)
	}
	return rules
}

func applyAll(t *testing.T, rules Rules, state State, moves []TicTacToeMove) State {
	t.Helper()
	for _, m := range moves {
		next, err := rules.Apply(state, m, state.Turn())
		if err != nil {
			t.Fatalf("apply %+v: %v", m, err)
		}
		state = next
	}
	return state
}

func TestTicTacToeWinnerOnEveryLine(t *testing.T) {
	for i, line := range ticTacToeLines {
		for _, player := range []int{1, 2} {
			state := &TicTacToeState{CurrentPlayer: player}
			for _, cell := range line {
				state.Board[cell.Row][cell.Col] = player
			}
			winner, cells := ticTacToeWinner(state.Board)
			if winner != player {
				t.Fatalf("line %d: winner = %d, want %d", i, winner, player)
			}
			if len(cells) != 3 {
				t.Fatalf("line %d: winning line has %d cells", i, len(cells))
			}
		}
	}
}

func TestTicTacToeNoWinnerOnOpenBoard(t *testing.T) {
	rules := mustRules(t, TicTacToe)
	state, err := rules.NewState(2, nil)
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	if out := rules.Outcome(state); out.Winner != 0 || out.Draw {
		t.Fatalf("empty board outcome = %+v, want open", out)
	}

	partial := applyAll(t, rules, state, []TicTacToeMove{{0, 0}, {1, 1}, {0, 1}})
	if out := rules.Outcome(partial); out.Winner != 0 || out.Draw {
		t.Fatalf("open board outcome = %+v, want open", out)
	}
}

func TestTicTacToeRowWinScenario(t *testing.T) {
	rules := mustRules(t, TicTacToe)
	state, _ := rules.NewState(2, nil)

	state = applyAll(t, rules, state, []TicTacToeMove{
		{0, 0}, // player 1
		{1, 1}, // player 2
		{0, 1}, // player 1
		{2, 2}, // player 2
	})
	if out := rules.Outcome(state); out.Terminal() {
		t.Fatalf("game over early: %+v", out)
	}
	if state.Turn() != 1 {
		t.Fatalf("turn = %d, want 1", state.Turn())
	}

	state = applyAll(t, rules, state, []TicTacToeMove{{0, 2}})
	out := rules.Outcome(state)
	if out.Winner != 1 || out.Draw {
		t.Fatalf("outcome = %+v, want winner 1", out)
	}
	ttt := state.(*TicTacToeState)
	want := []Cell{{0, 0}, {0, 1}, {0, 2}}
	if len(ttt.WinningLine) != 3 {
		t.Fatalf("winning line = %v", ttt.WinningLine)
	}
	for i, cell := range want {
		if ttt.WinningLine[i] != cell {
			t.Fatalf("winning line = %v, want %v", ttt.WinningLine, want)
		}
	}
}

func TestTicTacToeRejectsBadMoves(t *testing.T) {
	rules := mustRules(t, TicTacToe)
	state, _ := rules.NewState(2, nil)

	if _, err := rules.Apply(state, TicTacToeMove{Row: 0, Col: 0}, 2); !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("out-of-turn error = %v", err)
	}
	if _, err := rules.Apply(state, TicTacToeMove{Row: 3, Col: 0}, 1); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("out-of-range error = %v", err)
	}

	state = applyAll(t, rules, state, []TicTacToeMove{{1, 1}})
	if _, err := rules.Apply(state, TicTacToeMove{Row: 1, Col: 1}, 2); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("occupied-cell error = %v", err)
	}
}

func TestTicTacToeApplyDoesNotMutateInput(t *testing.T) {
	rules := mustRules(t, TicTacToe)
	state, _ := rules.NewState(2, nil)
	if _, err := rules.Apply(state, TicTacToeMove{Row: 0, Col: 0}, 1); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if state.(*TicTacToeState).Board[0][0] != 0 {
		t.Fatal("apply mutated the input state")
	}
}

func TestTicTacToeDraw(t *testing.T) {
	rules := mustRules(t, TicTacToe)
	state, _ := rules.NewState(2, nil)
	// 1 2 1 / 1 2 2 / 2 1 1 with no three in line.
	state = applyAll(t, rules, state, []TicTacToeMove{
		{0, 0}, {0, 1}, {0, 2},
		{1, 1}, {1, 0}, {1, 2},
		{2, 1}, {2, 0}, {2, 2},
	})
	out := rules.Outcome(state)
	if out.Winner != 0 || !out.Draw {
		t.Fatalf("outcome = %+v, want draw", out)
	}
}

func TestTicTacToeLegalMovesRowMajor(t *testing.T) {
	rules := mustRules(t, TicTacToe)
	state, _ := rules.NewState(2, nil)
	state = applyAll(t, rules, state, []TicTacToeMove{{0, 0}, {0, 1}})

	moves := rules.LegalMoves(state)
	if len(moves) != 7 {
		t.Fatalf("legal moves = %d, want 7", len(moves))
	}
	first := moves[0].(TicTacToeMove)
	if first != (TicTacToeMove{Row: 0, Col: 2}) {
		t.Fatalf("first legal move = %+v, want row-major order", first)
	}
	last := moves[len(moves)-1].(TicTacToeMove)
	if last != (TicTacToeMove{Row: 2, Col: 2}) {
		t.Fatalf("last legal move = %+v", last)
	}
}
