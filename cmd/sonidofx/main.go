// Command sonidofx applies voice effects to audio files.
//
// Usage:
//
//	sonidofx [flags] <command> [args]
//
// Commands:
//
//	apply    - Transform a file with one effect and write a WAV next to it
//	effects  - List the available effects
//	analyze  - Print the pitch based gender estimate and levels of a file
package main

import (
	"fmt"
	"os"

	"github.com/RyanBlaney/sonido-fx/cmd/sonidofx/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
