package main

import "github.com/jshaw/civicfeed/cmd"

func main() {
	cmd.Execute()
}
