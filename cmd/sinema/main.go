package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI represents the main CLI structure
type CLI struct {
	APIKey   string `env:"OPENROUTER_API_KEY" help:"OpenRouter API key"`
	Config   string `help:"Path to JSON config file" type:"path"`
	LogLevel string `default:"info" help:"Log level"`

	Serve ServeCmd `cmd:"" default:"1" help:"Start the chat HTTP service (default)"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("sinema"),
		kong.Description("Swahili and Sheng aware movie-chat proxy"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
