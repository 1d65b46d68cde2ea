package main

import (
	"github.com/e-dream-ai/dreamstream/cmd"
)

func main() {
	cmd.Execute()
}
