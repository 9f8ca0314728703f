package main

import "github.com/xiam/guix-crates/internal/cli"

func main() {
	cli.Execute()
}
