package main

import "github.com/vidspect/vidspect/internal/cli"

func main() {
	cli.Main()
}
