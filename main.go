package main

import "github.com/itsmostafa/connections-eval/cmd"

func main() {
	cmd.Execute()
}
