package main

import (
	"github.com/Richard-GOZAN/imdb-analytics-platform/cmd"
)

func main() {
	cmd.Execute()
}
