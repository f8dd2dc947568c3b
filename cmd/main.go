package main

import "CursorAPI/internal/cli"

func main() {
	cli.Execute()
}
