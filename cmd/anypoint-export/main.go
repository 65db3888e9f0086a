package main

import "anypoint-export/internal/cli"

func main() {
	cli.Execute()
}
