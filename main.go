package main

import "github.com/andresmejia3/bbtface/cmd"

func main() {
	cmd.Execute()
}
