package main

import (
	"os"

	"horse.fit/lingo/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
