/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dogarrowtype/exquisite-corpse-game-discord-bot/internal/corpse"
)

// Mentioner renders a user identity as text the chat platform displays.
type Mentioner interface {
	Mention(user string) string
}

// MentionFunc adapts a function to Mentioner.
type MentionFunc func(user string) string

func (f MentionFunc) Mention(user string) string { return f(user) }

func renderJoin(m Mentioner, user string, res corpse.JoinResult) string {
	if res.AlreadyJoined {
		return fmt.Sprintf("%s is already in the player list!", m.Mention(user))
	}

	return fmt.Sprintf("%s has joined the game!", m.Mention(user))
}

func renderStart(m Mentioner, res corpse.StartResult) string {
	mentions := make([]string, len(res.Players))
	for i, p := range res.Players {
		mentions[i] = m.Mention(p)
	}

	var b strings.Builder
	b.WriteString("Starting a new game!\n")
	fmt.Fprintf(&b, "Players in this game: %s\n", strings.Join(mentions, " "))
	fmt.Fprintf(&b, "Number of words that will be visible to the next player: %d\n", res.Window)
	fmt.Fprintf(&b, "%s's turn. Use `/play` to continue the sentence.", m.Mention(res.Turn))

	return b.String()
}

func renderPlay(m Mentioner, res corpse.PlayResult) string {
	return fmt.Sprintf("Turn is complete! Current sentence: %s\n%s's turn!",
		strings.Join(res.Tail, " "),
		m.Mention(res.Next),
	)
}

func renderReveal(chunks []string) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		if i == 0 {
			out[i] = fmt.Sprintf("The story so far (Part %d):\n%s", i+1, c)
			continue
		}
		out[i] = fmt.Sprintf("Part %d:\n%s", i+1, c)
	}

	return out
}

const (
	msgCleared = "The story has been cleared. Starting fresh!"
	msgUsage   = "Unknown command. Available commands: `/join`, `/start [visible_words]`, `/play <sentence>`, `/reveal`, `/clear`."
)

// renderError turns a rejection into the message shown in the channel.
func renderError(m Mentioner, cmd Name, user string, err error) string {
	switch {
	case errors.Is(err, corpse.ErrNoSession):
		if cmd == Clear {
			return "No game data found for this channel. Use `/join` and `/start` to begin a new game."
		}
		return "No game data found for this channel. Use `/join` to begin creating a new game."
	case errors.Is(err, corpse.ErrNoPlayers):
		return "Not enough players! At least 1 player is required. Use `/join` to add more players."
	case errors.Is(err, corpse.ErrInvalidWindow):
		return "Visible_words must be a positive number."
	case errors.Is(err, corpse.ErrAlreadyStarted):
		return fmt.Sprintf("%s Sorry, the game has already been started, and you are not in it.", m.Mention(user))
	case errors.Is(err, corpse.ErrNotStarted):
		return "The game has not been started. The player who wants to go first should do `/start`."
	case errors.Is(err, corpse.ErrNotAPlayer):
		if cmd == Start {
			return fmt.Sprintf("%s You're not in the game. Use `/join` to join.", m.Mention(user))
		}
		return fmt.Sprintf("%s Sorry, the game has already been started, and you are not in it.", m.Mention(user))
	case errors.Is(err, corpse.ErrNotYourTurn):
		return fmt.Sprintf("%s It's not your turn yet. Wait for your turn to play.", m.Mention(user))
	case errors.Is(err, corpse.ErrNothingToReveal):
		return "The story is not ready yet."
	case errors.Is(err, corpse.ErrNotAuthorized):
		return fmt.Sprintf("%s You're not authorized to clear the story.", m.Mention(user))
	default:
		return "Something went wrong: " + err.Error()
	}
}
