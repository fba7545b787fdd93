package main

import "github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/cli"

func main() {
	cli.Execute()
}
