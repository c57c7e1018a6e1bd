package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/aki/chatsweep/internal/cli/commands"
	"github.com/aki/chatsweep/internal/cli/ui"
)

func main() {
	// A missing .env is fine, the token may come from the environment
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}
