// Package main plays a pass-and-play match in the terminal.
package main

import (
	"flag"
	"log"
	"os"

	"quoridor/internal/cmd/local"
)

func main() {
	first := flag.String("first", "Red", "name of the player starting on row 0")
	second := flag.String("second", "Green", "name of the player starting on row 8")
	flag.Parse()

	log.SetFlags(0)
	if err := local.Run(os.Stdin, os.Stdout, *first, *second); err != nil {
		log.Fatal(err)
	}
}
