package main

import (
	"os"

	servecmder "github.com/studyhallco/studyhall/cmd/studyhall/serve"
)

func main() {
	cmd := servecmder.NewServeCmd()
	cmd.Use = "studyhallapi"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .studyhall config directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
