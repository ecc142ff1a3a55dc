package main

import "github.com/easiarr/easiarr/cmd"

func main() {
	cmd.Execute()
}
