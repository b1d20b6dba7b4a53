package main

import (
	"fmt"
	"os"

	"github.com/deppfellow/people-api/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "people-api:", err)
		os.Exit(1)
	}
}
