package main

import "github.com/valence-dev/valence/cmd"

func main() {
	cmd.Execute()
}
