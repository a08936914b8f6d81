package main

import "github.com/issuehub/issuehub/cmd"

func main() {
	cmd.Execute()
}
