package main

import "github.com/user/gosec-autofix/cmd"

func main() {
	cmd.Execute()
}
