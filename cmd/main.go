package main

import (
	"os"

	"escape-quiz-service/internal/cli"
	"github.com/joho/godotenv"
)

func main() {
	// Missing .env is fine; keys can come from the environment.
	_ = godotenv.Load()
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
