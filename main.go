package main

import "github.com/naka-gawa/repo-lifecycle/cmd"

func main() {
	cmd.Execute()
}
