// Package main is the entry point for the projector application
package main

import "github.com/ethpandaops/projector/cmd"

func main() {
	cmd.Execute()
}
