package main

import (
	"github.com/lintbridge/lintbridge/cmd"
)

func main() {
	cmd.Execute()
}
