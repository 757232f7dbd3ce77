package main

import "github.com/saadjs/tally/cmd/tally"

func main() {
	tally.Execute()
}
