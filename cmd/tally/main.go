package main

import "github.com/mmynk/tally/internal/cli"

func main() {
	cli.Execute()
}
