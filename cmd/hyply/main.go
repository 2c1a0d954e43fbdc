package main

import "github.com/hyply/hyply/internal/cmd"

func main() {
	cmd.Execute()
}
