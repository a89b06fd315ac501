/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package corpse holds the per-channel state of exquisite corpse games.
//
// Players join a channel's session, one of them starts the game, and each
// player in turn appends a fragment to the story while only seeing the tail
// of the previous fragment. Reveal prints the whole story; clear resets the
// session for the next game.
package corpse

import (
	"slices"
	"strings"
	"sync"
)

// DefaultWindow is the number of words shown to the next player when start
// is called without an explicit value.
const DefaultWindow = 5

// Fragment is one player's contribution to the story.
type Fragment struct {
	Author string
	Words  []string
}

type JoinResult struct {
	AlreadyJoined bool
}

type StartResult struct {
	Players []string
	Window  int
	Turn    string
}

type PlayResult struct {
	Tail []string
	Next string
}

// Session is the game state of a single channel. All methods are safe for
// concurrent use; each one runs to completion under the session lock.
type Session struct {
	mu sync.Mutex

	players   []string // join order, which is also turn order
	fragments []Fragment
	turn      string
	hasTurn   bool
	started   bool
	window    int
}

func newSession() *Session {
	return &Session{window: DefaultWindow}
}

func (s *Session) isPlayerLocked(user string) bool {
	return slices.Contains(s.players, user)
}

// Join adds user to the roster. Joining twice is not an error; the result
// reports it instead. Nobody new may join once the game has started.
func (s *Session) Join(user string) (JoinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isPlayerLocked(user) {
		return JoinResult{AlreadyJoined: true}, nil
	}

	if s.started {
		return JoinResult{}, ErrAlreadyStarted
	}

	s.players = append(s.players, user)

	return JoinResult{}, nil
}

// Start begins a new game with user taking the first turn, wherever user
// sits in the roster. Fragments left over from an earlier game are
// discarded.
//
// Rejections, checked in this order:
//   - ErrNoPlayers if nobody has joined
//   - ErrNotAPlayer if user has not joined, since the turn always belongs
//     to a player
//   - ErrInvalidWindow if window is less than 1
func (s *Session) Start(user string, window int) (StartResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.canStartLocked(user); err != nil {
		return StartResult{}, err
	}

	if window < 1 {
		return StartResult{}, ErrInvalidWindow
	}

	s.fragments = nil
	s.turn = user
	s.hasTurn = true
	s.started = true
	s.window = window

	return StartResult{
		Players: slices.Clone(s.players),
		Window:  s.window,
		Turn:    s.turn,
	}, nil
}

// CanStart reports the rejection Start would give user before looking at
// the window, or nil if user may start a game.
func (s *Session) CanStart(user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.canStartLocked(user)
}

func (s *Session) canStartLocked(user string) error {
	if len(s.players) == 0 {
		return ErrNoPlayers
	}

	if !s.isPlayerLocked(user) {
		return ErrNotAPlayer
	}

	return nil
}

// Play appends text to the story on behalf of the player whose turn it is,
// then hands the turn to the player after them in join order.
func (s *Session) Play(user, text string) (PlayResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return PlayResult{}, ErrNotStarted
	}

	idx := slices.Index(s.players, user)
	if idx < 0 {
		return PlayResult{}, ErrNotAPlayer
	}

	if !s.hasTurn || s.turn != user {
		return PlayResult{}, ErrNotYourTurn
	}

	words := strings.Fields(text)
	s.fragments = append(s.fragments, Fragment{Author: user, Words: words})

	s.turn = s.players[(idx+1)%len(s.players)]

	return PlayResult{
		Tail: Tail(words, s.window),
		Next: s.turn,
	}, nil
}

// Reveal returns the full story split into chunks of at most chunkSize
// characters.
func (s *Session) Reveal(chunkSize int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.fragments) == 0 {
		return nil, ErrNothingToReveal
	}

	return Chunk(joinFragments(s.fragments), chunkSize), nil
}

// Clear resets the session to its initial state. Only current players may
// clear it.
func (s *Session) Clear(user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isPlayerLocked(user) {
		return ErrNotAuthorized
	}

	s.fragments = nil
	s.turn = ""
	s.hasTurn = false
	s.players = nil
	s.started = false
	s.window = DefaultWindow

	return nil
}

func (s *Session) Players() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.players)
}

// Turn reports whose turn it is. The second value is false when no game is
// in progress.
func (s *Session) Turn() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.turn, s.hasTurn
}

func (s *Session) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.started
}

func (s *Session) Window() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.window
}

func (s *Session) Fragments() []Fragment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Fragment, len(s.fragments))
	for i, f := range s.fragments {
		out[i] = Fragment{Author: f.Author, Words: slices.Clone(f.Words)}
	}

	return out
}

// Story returns every word played so far joined by single spaces.
func (s *Session) Story() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return joinFragments(s.fragments)
}
