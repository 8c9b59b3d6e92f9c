// Package main provides the rewards CLI.
package main

import "github.com/mesh-intelligence/rewards/internal/cli"

func main() {
	cli.Execute()
}
