package main

import "github.com/mvp-joe/graphport/internal/cli"

func main() {
	cli.Execute()
}
