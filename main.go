package main

import "github.com/clockops/clockctl/cmd"

func main() {
	cmd.Execute()
}
