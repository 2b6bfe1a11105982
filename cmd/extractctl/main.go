package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/octobees/contact-extractor/api/cmd/extractctl/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
