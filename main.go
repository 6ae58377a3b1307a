package main

import "cxbot/cmd"

func main() {
	cmd.Execute()
}
