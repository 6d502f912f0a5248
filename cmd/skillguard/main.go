package main

import "github.com/ppiankov/skillguard/internal/cli"

func main() {
	cli.Execute()
}
