package main

import "github.com/marcus-crane/mediabridge/cmd"

func main() {
	cmd.Execute()
}
