package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"unicode"
)

type LetterStatus string

const (
	LetterCorrect LetterStatus = "correct"
	LetterPresent LetterStatus = "present"
	LetterAbsent  LetterStatus = "absent"
)

type LetterResult struct {
	Letter string       `json:"letter"`
	Status LetterStatus `json:"status"`
}

type WordleGuess struct {
	Word   string         `json:"word"`
	Player int            `json:"player"`
	Result []LetterResult `json:"result"`
}

// WordleState is a shared guessing board: players take turns guessing the
// same target word within a fixed guess budget. The target word is stripped
// from public copies until the game is over.
type WordleState struct {
	TargetWord    string        `json:"target_word,omitempty"`
	Guesses       []WordleGuess `json:"guesses"`
	CurrentGuess  int           `json:"current_guess"`
	CurrentPlayer int           `json:"current_player"`
	PlayerCount   int           `json:"player_count"`
	Winner        int           `json:"winner"`
	IsWon         bool          `json:"is_won"`
	IsLost        bool          `json:"is_lost"`
	MaxGuesses    int           `json:"max_guesses"`
	Language      string        `json:"language"`
}

type WordleMove struct {
	Guess string `json:"guess"`
}

func (WordleMove) isMove() {}

func (s *WordleState) Turn() int    { return s.CurrentPlayer }
func (s *WordleState) Players() int { return s.PlayerCount }

func (s *WordleState) Clone() State {
	clone := *s
	if s.Guesses != nil {
		clone.Guesses = make([]WordleGuess, len(s.Guesses))
		for i, g := range s.Guesses {
			clone.Guesses[i] = g
			clone.Guesses[i].Result = append([]LetterResult(nil), g.Result...)
		}
	}
	return &clone
}

// Public hides the target word while the game is running. Clients with state
// access must never be able to read the answer mid-game.
func (s *WordleState) Public() State {
	clone := s.Clone().(*WordleState)
	if !s.IsWon && !s.IsLost {
		clone.TargetWord = ""
	}
	return clone
}

func (s *WordleState) withTurn(player int) State {
	clone := s.Clone().(*WordleState)
	clone.CurrentPlayer = player
	return clone
}

type wordleRules struct{}

func (wordleRules) Type() Type { return Wordle }

func (wordleRules) NewState(players int, rng *rand.Rand) (State, error) {
	if players < 2 || players > 10 {
		return nil, fmt.Errorf("wordle takes 2-10 players, got %d", players)
	}
	return &WordleState{
		TargetWord:    randomWord(defaultWordLanguage, rng),
		Guesses:       []WordleGuess{},
		CurrentPlayer: 1,
		PlayerCount:   players,
		MaxGuesses:    defaultWordleGuesses,
		Language:      defaultWordLanguage,
	}, nil
}

func (wordleRules) DecodeState(raw []byte) (State, error) {
	var s WordleState
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (wordleRules) DecodeMove(raw []byte) (Move, error) {
	var m WordleMove
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	return m, nil
}

func (r wordleRules) Apply(s State, m Move, player int) (State, error) {
	state, ok := s.(*WordleState)
	if !ok {
		return nil, fmt.Errorf("%w: wrong state type", ErrIllegalMove)
	}
	move, ok := m.(WordleMove)
	if !ok {
		return nil, fmt.Errorf("%w: wrong move type", ErrIllegalMove)
	}
	if player != state.CurrentPlayer {
		return nil, fmt.Errorf("%w: player %d moved on player %d's turn", ErrOutOfTurn, player, state.CurrentPlayer)
	}
	if state.IsWon || state.IsLost {
		return nil, fmt.Errorf("%w: game is over", ErrIllegalMove)
	}
	guess := strings.ToUpper(strings.TrimSpace(move.Guess))
	if len(guess) != len(state.TargetWord) {
		return nil, fmt.Errorf("%w: guess must be %d letters", ErrIllegalMove, len(state.TargetWord))
	}
	for _, r := range guess {
		if !unicode.IsLetter(r) {
			return nil, fmt.Errorf("%w: guess must contain only letters", ErrIllegalMove)
		}
	}

	next := state.Clone().(*WordleState)
	next.Guesses = append(next.Guesses, WordleGuess{
		Word:   guess,
		Player: player,
		Result: scoreWordleGuess(next.TargetWord, guess),
	})
	next.CurrentGuess++
	if guess == next.TargetWord {
		next.IsWon = true
		next.Winner = player
	} else if next.CurrentGuess >= next.MaxGuesses {
		next.IsLost = true
	}
	next.CurrentPlayer = player%next.PlayerCount + 1
	return next, nil
}

func (wordleRules) Outcome(s State) Outcome {
	state, ok := s.(*WordleState)
	if !ok {
		return Outcome{}
	}
	// An exhausted guess budget with no correct guess counts as a draw.
	return Outcome{Winner: state.Winner, Draw: state.IsLost}
}

// LegalMoves is nil for wordle; the guess space is not enumerable.
func (wordleRules) LegalMoves(State) []Move { return nil }

// scoreWordleGuess marks each letter correct, present or absent. Present
// marks are budgeted by the count of unmatched target letters so duplicate
// letters are not over-reported.
func scoreWordleGuess(target, guess string) []LetterResult {
	result := make([]LetterResult, len(guess))
	remaining := make(map[byte]int)

	for i := 0; i < len(guess); i++ {
		if guess[i] == target[i] {
			result[i] = LetterResult{Letter: string(guess[i]), Status: LetterCorrect}
		} else {
			remaining[target[i]]++
		}
	}
	for i := 0; i < len(guess); i++ {
		if result[i].Status == LetterCorrect {
			continue
		}
		if remaining[guess[i]] > 0 {
			remaining[guess[i]]--
			result[i] = LetterResult{Letter: string(guess[i]), Status: LetterPresent}
		} else {
			result[i] = LetterResult{Letter: string(guess[i]), Status: LetterAbsent}
		}
	}
	return result
}
