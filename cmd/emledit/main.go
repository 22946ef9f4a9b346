package main

import (
	"github.com/zostay/emledit/cmd/emledit/cmd"
)

func main() {
	cmd.Execute()
}
