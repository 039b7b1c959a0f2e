package main

import "github.com/go-zwerg/zwerg/cmd"

func main() {
	cmd.Execute()
}
