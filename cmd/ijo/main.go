package main

import "github.com/ijo-project/ijo-backend/internal/cli"

func main() {
	cli.Execute()
}
