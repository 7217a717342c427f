package main

import (
	"os"

	studyhallcmder "github.com/studyhallco/studyhall/cmd/studyhall"
)

func main() {
	cmd := studyhallcmder.NewStudyhallCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
