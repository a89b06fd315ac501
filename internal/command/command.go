/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package command turns chat commands into session operations and renders
// the outcome as messages for the channel.
package command

import (
	"strconv"
	"strings"

	"github.com/dogarrowtype/exquisite-corpse-game-discord-bot/internal/corpse"
)

type Name string

const (
	Join   Name = "join"
	Start  Name = "start"
	Play   Name = "play"
	Reveal Name = "reveal"
	Clear  Name = "clear"
)

// Spec describes a command for transports that register commands up front.
type Spec struct {
	Name        Name
	Description string
	Arg         string // empty when the command takes no argument
	ArgHelp     string
	ArgInteger  bool
	ArgRequired bool
}

var Specs = []Spec{
	{Name: Join, Description: "Join the Exquisite Corpse game"},
	{
		Name:        Start,
		Description: "Start a new game",
		Arg:         "visible_words",
		ArgHelp:     "Number of words the next player gets to see (default 5)",
		ArgInteger:  true,
	},
	{
		Name:        Play,
		Description: "Continue the sentence",
		Arg:         "sentence",
		ArgHelp:     "Your part of the story",
		ArgRequired: true,
	},
	{Name: Reveal, Description: "Reveal the full story"},
	{Name: Clear, Description: "Clear the current story"},
}

// Parse splits a line such as "play the quick brown fox" into a command
// name and its argument. A leading slash is ignored.
func Parse(line string) (Name, string) {
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "/"))

	name, args, _ := strings.Cut(line, " ")

	return Name(strings.ToLower(name)), strings.TrimSpace(args)
}

// ParseWindow reads the optional visible_words argument of start.
func ParseWindow(arg string) (int, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return corpse.DefaultWindow, nil
	}

	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, corpse.ErrInvalidWindow
	}

	return n, nil
}
