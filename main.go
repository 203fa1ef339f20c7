package main

import (
	cmd "github.com/parkscout/parkscout/internal/cli"
)

func main() {
	cmd.Execute()
}
