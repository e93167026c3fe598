package main

import "github.com/mvp-joe/spec-check/internal/cli"

func main() {
	cli.Execute()
}
