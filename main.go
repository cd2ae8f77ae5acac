package main

import (
	"os"

	"github.com/kilianp07/courtsched/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
