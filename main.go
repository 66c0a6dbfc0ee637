package main

import "github.com/quocvuong92/leafify/cmd"

func main() {
	cmd.Execute()
}
