package main

import (
	"os"

	"github.com/rznies/lingoSir/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
