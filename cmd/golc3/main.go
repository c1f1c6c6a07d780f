// Package main is the entry point for the golc3 CLI.
//
// Usage:
//
//	golc3 [flags] <command> [args]
//
// Commands:
//
//	encode     - Encode a WAV or MP3 file to a .lc3 file
//	info       - Show the header and frame layout of a .lc3 file
//	stream     - Encode a file and push frames over RTP/UDP or a websocket
package main

import (
	"fmt"
	"os"

	"github.com/thesyncim/golc3/cmd/golc3/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
