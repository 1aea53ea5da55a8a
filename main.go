package main

import "github.com/afumu/gptrace/internal/cli"

func main() {
	cli.Execute()
}
