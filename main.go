package main

import "github.com/wkalt/elfsize/cmd"

func main() {
	cmd.Execute()
}
