package main

import "github.com/oshokin/vlarm/cmd/vlarm/cmd"

func main() {
	cmd.Execute()
}
