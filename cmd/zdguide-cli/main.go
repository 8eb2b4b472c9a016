package main

import "zdguide/cmd/zdguide-cli/cmd"

func main() {
	cmd.Execute()
}
