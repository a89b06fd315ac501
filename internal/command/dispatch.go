/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package command

import (
	"github.com/rs/zerolog/log"

	"github.com/dogarrowtype/exquisite-corpse-game-discord-bot/internal/corpse"
)

// DefaultChunkSize keeps each part of a revealed story inside Discord's
// 2000 character message limit, with room for the part label.
const DefaultChunkSize = 1940

// Request is one command invoked by User in Channel.
type Request struct {
	Channel string
	User    string
	Name    Name
	Args    string
}

// Reply holds the messages to post in the channel, in order. Only reveal
// produces more than one.
type Reply struct {
	Messages []string
	Err      error
}

type Dispatcher struct {
	store     *corpse.Store
	chunkSize int
}

func NewDispatcher(store *corpse.Store, chunkSize int) *Dispatcher {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}

	return &Dispatcher{
		store:     store,
		chunkSize: chunkSize,
	}
}

func (d *Dispatcher) Store() *corpse.Store {
	return d.store
}

// Dispatch runs req against its channel's session. Rejections are rendered
// into the reply and also returned in Reply.Err.
func (d *Dispatcher) Dispatch(m Mentioner, req Request) Reply {
	msgs, err := d.run(m, req)
	if err != nil {
		msgs = []string{renderError(m, req.Name, req.User, err)}
	}

	ev := log.Debug()
	if err != nil {
		ev = ev.Str("rejected", err.Error())
	}
	ev.Str("component", "GAMES").
		Str("channel", req.Channel).
		Str("user", req.User).
		Str("command", string(req.Name)).
		Int("messages", len(msgs)).
		Msg("dispatched command")

	return Reply{Messages: msgs, Err: err}
}

func (d *Dispatcher) run(m Mentioner, req Request) ([]string, error) {
	switch req.Name {
	case Join:
		res, err := d.store.Session(req.Channel).Join(req.User)
		if err != nil {
			return nil, err
		}
		return []string{renderJoin(m, req.User, res)}, nil

	case Start:
		window, werr := ParseWindow(req.Args)
		s, ok := d.store.Lookup(req.Channel)
		if !ok {
			return nil, corpse.ErrNoSession
		}
		// Roster problems outrank a bad window.
		if werr != nil {
			if err := s.CanStart(req.User); err != nil {
				return nil, err
			}
			return nil, werr
		}
		res, err := s.Start(req.User, window)
		if err != nil {
			return nil, err
		}
		return []string{renderStart(m, res)}, nil

	case Play:
		s, ok := d.store.Lookup(req.Channel)
		if !ok {
			return nil, corpse.ErrNoSession
		}
		res, err := s.Play(req.User, req.Args)
		if err != nil {
			return nil, err
		}
		return []string{renderPlay(m, res)}, nil

	case Reveal:
		s, ok := d.store.Lookup(req.Channel)
		if !ok {
			return nil, corpse.ErrNothingToReveal
		}
		chunks, err := s.Reveal(d.chunkSize)
		if err != nil {
			return nil, err
		}
		return renderReveal(chunks), nil

	case Clear:
		s, ok := d.store.Lookup(req.Channel)
		if !ok {
			return nil, corpse.ErrNoSession
		}
		if err := s.Clear(req.User); err != nil {
			return nil, err
		}
		return []string{msgCleared}, nil

	default:
		return []string{msgUsage}, nil
	}
}
