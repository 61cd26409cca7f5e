package main

import "github.com/qscuio/qubot/cmd"

func main() {
	cmd.Execute()
}
