/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dogarrowtype/exquisite-corpse-game-discord-bot/internal/command"
)

type Config struct {
	bind           string
	chunkSize      int
	discordGuild   string
	discordToken   string
	envFile        string
	noWeb          bool
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.chunkSize < 1 {
		return fmt.Errorf("invalid chunk size (must be at least 1): %d", c.chunkSize)
	}
	if c.noWeb && c.discordToken == "" {
		return errors.New("nothing to serve: --no-web is set and no discord token was provided")
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// loadEnvFile reads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is ignored.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "loading %s", path)
	}

	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CORPSE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "exquisite-corpse",
		Short:         "Play exquisite corpse, one chat channel at a time.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()

			envFile := cfg.envFile
			if f := fs.Lookup("env-file"); f != nil && !f.Changed && os.Getenv("CORPSE_ENV_FILE") != "" {
				envFile = os.Getenv("CORPSE_ENV_FILE")
			}
			if err := loadEnvFile(envFile); err != nil {
				return err
			}

			// Environment (including the env file) fills in any flag left unset.
			fs.VisitAll(func(f *pflag.Flag) {
				_ = v.BindPFlag(f.Name, f)
				_ = v.BindEnv(f.Name)
				if !f.Changed && v.IsSet(f.Name) {
					_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
				}
			})

			setupLogging(cfg)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// The bot token has historically lived in .env as TOKEN.
			if cfg.discordToken == "" {
				cfg.discordToken = os.Getenv("TOKEN")
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: CORPSE_BIND)")
	fs.IntVar(&cfg.chunkSize, "chunk-size", command.DefaultChunkSize, "maximum characters per revealed story part (env: CORPSE_CHUNK_SIZE)")
	fs.StringVar(&cfg.discordGuild, "discord-guild", "", "register slash commands on this guild only, instead of globally (env: CORPSE_DISCORD_GUILD)")
	fs.StringVar(&cfg.discordToken, "discord-token", "", "discord bot token; falls back to TOKEN (env: CORPSE_DISCORD_TOKEN)")
	fs.StringVar(&cfg.envFile, "env-file", ".env", "file of KEY=value pairs loaded into the environment on startup (env: CORPSE_ENV_FILE)")
	fs.BoolVar(&cfg.noWeb, "no-web", false, "do not serve the browser client (env: CORPSE_NO_WEB)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: CORPSE_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: CORPSE_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: CORPSE_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle browser channels are disconnected (env: CORPSE_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: CORPSE_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: CORPSE_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: CORPSE_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: CORPSE_VERSION)")

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("exquisite-corpse v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
