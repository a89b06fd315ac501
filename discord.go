/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dogarrowtype/exquisite-corpse-game-discord-bot/internal/command"
)

var discordMentions = command.MentionFunc(func(userID string) string {
	return "<@" + userID + ">"
})

// interactionResponder is the part of *discordgo.Session used to answer
// slash commands.
type interactionResponder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

func slashCommands() []*discordgo.ApplicationCommand {
	minWindow := 1.0

	cmds := make([]*discordgo.ApplicationCommand, 0, len(command.Specs))
	for _, spec := range command.Specs {
		ac := &discordgo.ApplicationCommand{
			Name:        string(spec.Name),
			Description: spec.Description,
		}

		if spec.Arg != "" {
			opt := &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        spec.Arg,
				Description: spec.ArgHelp,
				Required:    spec.ArgRequired,
			}
			if spec.ArgInteger {
				opt.Type = discordgo.ApplicationCommandOptionInteger
				opt.MinValue = &minWindow
			}
			ac.Options = []*discordgo.ApplicationCommandOption{opt}
		}

		cmds = append(cmds, ac)
	}

	return cmds
}

// interactionRequest extracts the command from a slash command interaction.
func interactionRequest(i *discordgo.InteractionCreate) (command.Request, bool) {
	if i.Interaction == nil || i.Type != discordgo.InteractionApplicationCommand {
		return command.Request{}, false
	}

	var user *discordgo.User
	switch {
	case i.Member != nil && i.Member.User != nil:
		user = i.Member.User
	case i.User != nil:
		user = i.User
	default:
		return command.Request{}, false
	}

	data := i.ApplicationCommandData()

	req := command.Request{
		Channel: i.ChannelID,
		User:    user.ID,
		Name:    command.Name(data.Name),
	}

	for _, opt := range data.Options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionInteger:
			req.Args = strconv.FormatInt(opt.IntValue(), 10)
		case discordgo.ApplicationCommandOptionString:
			req.Args = opt.StringValue()
		}
	}

	return req, true
}

// respond posts the first message as the interaction response and the rest
// as follow-ups, in order.
func respond(r interactionResponder, i *discordgo.Interaction, reply command.Reply) error {
	allowed := &discordgo.MessageAllowedMentions{
		Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
	}

	for n, msg := range reply.Messages {
		if n == 0 {
			err := r.InteractionRespond(i, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: &discordgo.InteractionResponseData{
					Content:         msg,
					AllowedMentions: allowed,
				},
			})
			if err != nil {
				return errors.Wrap(err, "responding to interaction")
			}
			continue
		}

		_, err := r.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
			Content:         msg,
			AllowedMentions: allowed,
		})
		if err != nil {
			return errors.Wrapf(err, "sending follow-up %d", n+1)
		}
	}

	return nil
}

func handleInteraction(r interactionResponder, dispatcher *command.Dispatcher, i *discordgo.InteractionCreate) {
	req, ok := interactionRequest(i)
	if !ok {
		return
	}

	reply := dispatcher.Dispatch(discordMentions, req)

	if err := respond(r, i.Interaction, reply); err != nil {
		log.Error().
			Str("component", "DISCORD").
			Str("channel", req.Channel).
			Str("command", string(req.Name)).
			Err(err).
			Msg("failed to deliver reply")
	}
}

func registerSlashCommands(s *discordgo.Session, appID, guildID string) error {
	registered, err := s.ApplicationCommandBulkOverwrite(appID, guildID, slashCommands())
	if err != nil {
		return errors.Wrap(err, "registering slash commands")
	}

	log.Info().Str("component", "DISCORD").Int("commands", len(registered)).Str("guild", guildID).Msg("registered slash commands")

	return nil
}

// runDiscord connects the bot and serves slash commands until ctx is done.
func runDiscord(ctx context.Context, cfg *Config, dispatcher *command.Dispatcher) error {
	s, err := discordgo.New("Bot " + cfg.discordToken)
	if err != nil {
		return errors.Wrap(err, "creating discord session")
	}

	s.Identify.Intents = discordgo.IntentsGuilds

	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("component", "DISCORD").Str("user", r.User.String()).Msg("connected to discord")

		appID := r.User.ID
		if r.Application != nil && r.Application.ID != "" {
			appID = r.Application.ID
		}

		if err := registerSlashCommands(s, appID, cfg.discordGuild); err != nil {
			log.Error().Str("component", "DISCORD").Err(err).Msg("slash commands unavailable")
		}
	})

	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		handleInteraction(s, dispatcher, i)
	})

	if err := s.Open(); err != nil {
		return errors.Wrap(err, "connecting to discord")
	}

	<-ctx.Done()

	log.Info().Str("component", "DISCORD").Msg("disconnecting from discord")

	return errors.Wrap(s.Close(), "closing discord session")
}
