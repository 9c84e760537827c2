package main

import "github.com/devicelab-dev/backyard-e2e/pkg/cli"

func main() {
	cli.Execute()
}
