package main

import (
	"os"

	"github.com/go-notification-hub/cmd/notifyhub/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
