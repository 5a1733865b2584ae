package main

import "github.com/forPelevin/shortsclip/internal/cli"

func main() {
	cli.Main()
}
