package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/prometheus/common/version"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const AppName = "morning-bill-checker"
const AppDesc = "Checks the bills recorded in Morning against the companies expected to bill in each two-month reporting period, and reports companies lacking bills or with fewer bills than expected."

var cli struct {
	Globals `embed:""`

	Check CheckCmd `cmd:"" default:"withargs" help:"Reconcile one reporting period and print the report"`
	Serve ServeCmd `cmd:"" help:"Reconcile the current reporting period periodically and expose the results as Prometheus metrics"`
}

// Globals are shared by every command.
type Globals struct {
	ConfigPath     string `env:"CONFIG_PATH" help:"${env} - Path to config file" default:"./config.yml"`
	TokenURL       string `env:"TOKEN_URL" help:"${env} - Morning token endpoint" required:""`
	ExpenseURL     string `env:"EXPENSE_URL" help:"${env} - Morning expense search endpoint" required:""`
	MorningAPIKey  string `env:"MORNING_API_KEY" help:"${env} - Morning API key ID" required:""`
	MorningSecret  string `env:"MORNING_SECRET" help:"${env} - Morning API secret" required:""`
	LogLevel       string `env:"LOG_LEVEL" help:"${env} - Log level (trace, debug, info, warn, error)" default:"info"`
	ConsoleLogging bool   `env:"LOG_CONSOLE" help:"${env} - Human readable logs instead of JSON" default:"false"`
}

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	ctx := kong.Parse(&cli,
		kong.Name(AppName),
		kong.Description(AppDesc),
		kong.UsageOnError(),
	)
	setupLogger(cli.LogLevel, cli.ConsoleLogging)

	log.Debug().
		Str("version", version.Info()).
		Str("command", ctx.Command()).
		Msg("Starting " + AppName)

	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

func setupLogger(level string, console bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()
	} else {
		log.Logger = log.Output(os.Stderr).With().Caller().Logger()
	}
	if err != nil {
		log.Warn().Str("level", level).Msg("Unknown log level, using info")
	}
}
