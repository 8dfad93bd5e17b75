package main

import "github.com/kozaktomas/image-collage/cmd"

func main() {
	cmd.Execute()
}
