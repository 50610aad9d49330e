package main

import (
	"fmt"
	"os"

	"github.com/prezi/autoscalesim/cmd/autoscalesim/cmd"
)

func main() {
	if err := cmd.RootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
