// Package main - cubigma is a symmetric cipher machine that generalizes the
// Playfair digraph cipher to three dimensions and adds Enigma-style rotor
// stepping, with optional PNG steganography for the result.
package main

import "github.com/cubigma/cubigma/cmd"

func main() {
	cmd.Execute()
}
