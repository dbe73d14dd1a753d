package main

import (
	"os"

	"tender-scout/cmd/runner/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
