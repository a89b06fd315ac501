package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dogarrowtype/exquisite-corpse-game-discord-bot/internal/corpse"
)

var discordMentions = MentionFunc(func(user string) string { return "<@" + user + ">" })

type harness struct {
	t *testing.T
	d *Dispatcher
}

func newHarness(t *testing.T, chunkSize int) *harness {
	return &harness{t: t, d: NewDispatcher(corpse.NewStore(), chunkSize)}
}

func (h *harness) run(channel, user string, name Name, args string) Reply {
	h.t.Helper()
	return h.d.Dispatch(discordMentions, Request{Channel: channel, User: user, Name: name, Args: args})
}

func (h *harness) one(channel, user string, name Name, args string) string {
	h.t.Helper()
	r := h.run(channel, user, name, args)
	require.Len(h.t, r.Messages, 1)
	return r.Messages[0]
}

func TestDispatch_FullGame(t *testing.T) {
	h := newHarness(t, DefaultChunkSize)

	assert.Equal(t, "<@U1> has joined the game!", h.one("c", "U1", Join, ""))
	assert.Equal(t, "<@U2> has joined the game!", h.one("c", "U2", Join, ""))
	assert.Equal(t, "<@U1> is already in the player list!", h.one("c", "U1", Join, ""))

	assert.Equal(t,
		"Starting a new game!\n"+
			"Players in this game: <@U1> <@U2>\n"+
			"Number of words that will be visible to the next player: 2\n"+
			"<@U1>'s turn. Use `/play` to continue the sentence.",
		h.one("c", "U1", Start, "2"),
	)

	assert.Equal(t, "Turn is complete! Current sentence: quick brown\n<@U2>'s turn!",
		h.one("c", "U1", Play, "the quick brown"))
	assert.Equal(t, "Turn is complete! Current sentence: fox jumps\n<@U1>'s turn!",
		h.one("c", "U2", Play, "fox jumps"))

	assert.Equal(t, "The story so far (Part 1):\nthe quick brown fox jumps", h.one("c", "U3", Reveal, ""))

	assert.Equal(t, msgCleared, h.one("c", "U2", Clear, ""))
	assert.Equal(t, "The story is not ready yet.", h.one("c", "U2", Reveal, ""))
}

func TestDispatch_Rejections(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(h *harness)
		user    string
		cmd     Name
		args    string
		wantErr error
		want    string
	}{
		{
			name:    "start without session",
			cmd:     Start,
			user:    "U1",
			wantErr: corpse.ErrNoSession,
			want:    "No game data found for this channel. Use `/join` to begin creating a new game.",
		},
		{
			name:    "play without session",
			cmd:     Play,
			user:    "U1",
			args:    "hi",
			wantErr: corpse.ErrNoSession,
		},
		{
			name:    "clear without session",
			cmd:     Clear,
			user:    "U1",
			wantErr: corpse.ErrNoSession,
			want:    "No game data found for this channel. Use `/join` and `/start` to begin a new game.",
		},
		{
			name:    "reveal without session",
			cmd:     Reveal,
			wantErr: corpse.ErrNothingToReveal,
			want:    "The story is not ready yet.",
		},
		{
			name: "start with empty roster",
			setup: func(h *harness) {
				h.run("c", "U1", Join, "")
				h.run("c", "U1", Clear, "")
			},
			cmd:     Start,
			user:    "U1",
			wantErr: corpse.ErrNoPlayers,
		},
		{
			name:    "start with bad window",
			setup:   func(h *harness) { h.run("c", "U1", Join, "") },
			cmd:     Start,
			user:    "U1",
			args:    "five",
			wantErr: corpse.ErrInvalidWindow,
			want:    "Visible_words must be a positive number.",
		},
		{
			name: "roster checked before window",
			setup: func(h *harness) {
				h.run("c", "U1", Join, "")
				h.run("c", "U1", Clear, "")
			},
			cmd:     Start,
			user:    "U1",
			args:    "-3",
			wantErr: corpse.ErrNoPlayers,
		},
		{
			name:    "non-member checked before window",
			setup:   func(h *harness) { h.run("c", "U1", Join, "") },
			cmd:     Start,
			user:    "U9",
			args:    "zero",
			wantErr: corpse.ErrNotAPlayer,
		},
		{
			name:    "bad window on unknown channel",
			cmd:     Start,
			user:    "U1",
			args:    "0",
			wantErr: corpse.ErrNoSession,
		},
		{
			name:    "start by non-member",
			setup:   func(h *harness) { h.run("c", "U1", Join, "") },
			cmd:     Start,
			user:    "U9",
			wantErr: corpse.ErrNotAPlayer,
			want:    "<@U9> You're not in the game. Use `/join` to join.",
		},
		{
			name: "late join",
			setup: func(h *harness) {
				h.run("c", "U1", Join, "")
				h.run("c", "U1", Start, "")
			},
			cmd:     Join,
			user:    "U3",
			wantErr: corpse.ErrAlreadyStarted,
			want:    "<@U3> Sorry, the game has already been started, and you are not in it.",
		},
		{
			name:    "play before start",
			setup:   func(h *harness) { h.run("c", "U1", Join, "") },
			cmd:     Play,
			user:    "U1",
			args:    "hi",
			wantErr: corpse.ErrNotStarted,
		},
		{
			name: "play by stranger",
			setup: func(h *harness) {
				h.run("c", "U1", Join, "")
				h.run("c", "U1", Start, "")
			},
			cmd:     Play,
			user:    "U3",
			args:    "hi",
			wantErr: corpse.ErrNotAPlayer,
		},
		{
			name: "play out of turn",
			setup: func(h *harness) {
				h.run("c", "U1", Join, "")
				h.run("c", "U2", Join, "")
				h.run("c", "U1", Start, "")
			},
			cmd:     Play,
			user:    "U2",
			args:    "hi",
			wantErr: corpse.ErrNotYourTurn,
			want:    "<@U2> It's not your turn yet. Wait for your turn to play.",
		},
		{
			name:    "clear by stranger",
			setup:   func(h *harness) { h.run("c", "U1", Join, "") },
			cmd:     Clear,
			user:    "U2",
			wantErr: corpse.ErrNotAuthorized,
			want:    "<@U2> You're not authorized to clear the story.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, DefaultChunkSize)
			if tc.setup != nil {
				tc.setup(h)
			}

			r := h.run("c", tc.user, tc.cmd, tc.args)
			require.ErrorIs(t, r.Err, tc.wantErr)
			require.Len(t, r.Messages, 1)
			if tc.want != "" {
				assert.Equal(t, tc.want, r.Messages[0])
			}
		})
	}
}

func TestDispatch_RevealParts(t *testing.T) {
	h := newHarness(t, 10)
	h.run("c", "U1", Join, "")
	h.run("c", "U1", Start, "")
	h.run("c", "U1", Play, "abcdefghij klmnopqrs")

	r := h.run("c", "U1", Reveal, "")
	require.NoError(t, r.Err)
	assert.Equal(t, []string{
		"The story so far (Part 1):\nabcdefghij",
		"Part 2:\n klmnopqrs",
	}, r.Messages)
}

func TestDispatch_UnknownCommand(t *testing.T) {
	h := newHarness(t, DefaultChunkSize)

	r := h.run("c", "U1", Name("dance"), "")
	require.NoError(t, r.Err)
	assert.Equal(t, []string{msgUsage}, r.Messages)
	assert.Equal(t, 0, h.d.Store().Len())
}

func TestDispatch_ChannelsAreIsolated(t *testing.T) {
	h := newHarness(t, DefaultChunkSize)
	h.run("a", "U1", Join, "")
	h.run("a", "U1", Start, "")
	h.run("a", "U1", Play, "only in a")

	r := h.run("b", "U1", Reveal, "")
	require.ErrorIs(t, r.Err, corpse.ErrNothingToReveal)

	r = h.run("a", "U1", Reveal, "")
	require.NoError(t, r.Err)
	assert.True(t, strings.HasSuffix(r.Messages[0], "only in a"))
}

func TestNewDispatcher_DefaultsChunkSize(t *testing.T) {
	d := NewDispatcher(corpse.NewStore(), 0)
	assert.Equal(t, DefaultChunkSize, d.chunkSize)
}
