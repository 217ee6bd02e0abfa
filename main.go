package main

import "github.com/saadjs/littlelemon/cmd/lemon"

func main() {
	lemon.Execute()
}
