// ABOUTME: seqgen entry point
// ABOUTME: Hands control to the cobra command tree
package main

import "github.com/tonewright/seqgen/internal/cmd"

func main() {
	cmd.Execute()
}
