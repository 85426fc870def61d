package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Seednode/emojiguesser/games/emoji"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	allowedOrigins []string
	bind           string
	logLevel       string
	maxRounds      int
	phrases        string
	port           int
	prefix         string
	profile        bool
	revealDelay    time.Duration
	roomTimeout    time.Duration
	roundDuration  time.Duration
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
	if c.maxRounds < 1 {
		return fmt.Errorf("invalid max rounds (must be at least 1): %d", c.maxRounds)
	}
	if c.roundDuration <= 0 {
		return fmt.Errorf("invalid round duration (must be positive): %s", c.roundDuration)
	}
	if c.revealDelay < 0 {
		return fmt.Errorf("invalid reveal delay (must not be negative): %s", c.revealDelay)
	}
	if c.roomTimeout < 0 {
		return fmt.Errorf("invalid room timeout (must not be negative): %s", c.roomTimeout)
	}
	switch c.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level (must be one of debug, info, warn, error): %q", c.logLevel)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) settings() emoji.Settings {
	s := emoji.DefaultSettings()
	s.MaxRounds = c.maxRounds
	s.RoundDuration = c.roundDuration
	s.RevealDelay = c.revealDelay

	return s
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("EMOJIGUESSER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "emojiguesser",
		Short:         "A multiplayer emoji phrase guessing game, served over websockets.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringSliceVar(&cfg.allowedOrigins, "allowed-origins", nil, "origins allowed to open websockets, empty allows any (env: EMOJIGUESSER_ALLOWED_ORIGINS)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: EMOJIGUESSER_BIND)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "log level: debug, info, warn or error (env: EMOJIGUESSER_LOG_LEVEL)")
	fs.IntVar(&cfg.maxRounds, "max-rounds", 6, "rounds per game (env: EMOJIGUESSER_MAX_ROUNDS)")
	fs.StringVar(&cfg.phrases, "phrases", "", "path to a json, yaml or toml phrase catalog (env: EMOJIGUESSER_PHRASES)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: EMOJIGUESSER_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: EMOJIGUESSER_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: EMOJIGUESSER_PROFILE)")
	fs.DurationVar(&cfg.revealDelay, "reveal-delay", 5*time.Second, "pause between rounds (env: EMOJIGUESSER_REVEAL_DELAY)")
	fs.DurationVar(&cfg.roomTimeout, "room-timeout", 60*time.Minute, "time before idle rooms are closed, 0 disables (env: EMOJIGUESSER_ROOM_TIMEOUT)")
	fs.DurationVar(&cfg.roundDuration, "round-duration", 60*time.Second, "time allowed per round (env: EMOJIGUESSER_ROUND_DURATION)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: EMOJIGUESSER_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: EMOJIGUESSER_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: EMOJIGUESSER_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: EMOJIGUESSER_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("emojiguesser v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
