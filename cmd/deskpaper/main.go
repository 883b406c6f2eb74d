package main

import (
	"github.com/matjam/deskpaper/internal/cli"
)

func main() {
	cli.Execute()
}
