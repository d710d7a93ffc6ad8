package main

import (
	"fmt"
	"os"

	_ "github.com/mohammed-shakir/crs-transform/internal/geodesy/builtin"

	"github.com/mohammed-shakir/crs-transform/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
