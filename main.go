package main

import (
	"fmt"
	"os"

	"github.com/giovaniif/stripe-charge/cmd/api"
)

func main() {
	if err := api.StartServer(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
