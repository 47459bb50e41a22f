package main

import "github.com/KaramelBytes/maslow-cli/cmd"

func main() {
	cmd.Execute()
}
