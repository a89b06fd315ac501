/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package corpse

import "errors"

// Rejections returned by Session operations. None of them leave a session
// partially modified.
var (
	ErrNoSession       = errors.New("no game in this channel")
	ErrNoPlayers       = errors.New("no players have joined")
	ErrInvalidWindow   = errors.New("visible words must be a positive integer")
	ErrAlreadyStarted  = errors.New("game already started")
	ErrNotStarted      = errors.New("game not started")
	ErrNotAPlayer      = errors.New("not a player in this game")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrNothingToReveal = errors.New("nothing to reveal")
	ErrNotAuthorized   = errors.New("not authorized")
)
