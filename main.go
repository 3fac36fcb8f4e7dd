package main

import (
	"github.com/souqtrack/souqtrack/cmd"
)

func main() {
	cmd.Execute()
}
