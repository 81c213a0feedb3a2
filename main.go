package main

import "schoolku_backend/cmd"

func main() {
	cmd.Execute()
}
