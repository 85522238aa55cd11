package main

import "github.com/theopenlane/policypeek/cmd"

func main() {
	cmd.Execute()
}
