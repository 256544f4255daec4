package main

import "github.com/kalkin/glv/cmd"

func main() {
	cmd.Execute()
}
