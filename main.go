package main

import "blasting_tracker/cmd"

func main() {
	cmd.Execute()
}
