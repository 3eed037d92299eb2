package main

import "github.com/meridian-cal/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
