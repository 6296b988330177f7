package main

import (
	"context"

	"course-scraper/cmd/course-scraper/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
