package main

import "github.com/oshokin/alarm-trigger/cmd/alarm-trigger/cmd"

func main() {
	cmd.Execute()
}
