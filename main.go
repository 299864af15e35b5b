package main

import "github.com/bnema/ideactl/cmd"

func main() {
	cmd.Execute()
}
