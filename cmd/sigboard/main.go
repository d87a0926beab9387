package main

import (
	"github.com/sigboard/sigboard/pkg/cli/cmd"
)

func main() {
	cmd.Execute()
}
