package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional; real deployments set TRADEOPS_* directly
	_ = godotenv.Load()

	var root = &cobra.Command{Use: "tradeops"}

	root.AddCommand(serveCMD())
	_ = root.Execute()
}
