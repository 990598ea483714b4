package main

import "github.com/devbush/call2insights/internal/adapters/cli"

func main() {
	cli.Execute()
}
