package main

import (
	"os"

	"parrotctl/internal/ctl"
)

func main() {
	os.Exit(ctl.Main())
}
