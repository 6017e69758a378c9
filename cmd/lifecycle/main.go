// Command lifecycle runs the lifecycle demos and inspects project config.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/lifecycle/cmd/lifecycle/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
