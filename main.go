package main

import "github.com/sidhant-sriv/gallery-api/cmd"

func main() {
	cmd.Execute()
}
