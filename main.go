package main

import (
	"os"

	"github.com/biblia-online/biblia/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
