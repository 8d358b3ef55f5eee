package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/accrava/secretsweep/cmd/secretsweep"
)

func main() {
	// a missing .env is fine
	_ = godotenv.Load()
	os.Exit(secretsweep.Execute())
}
