package main

import "github.com/ValentinKolb/localdb/cmd"

func main() {
	cmd.Execute()
}
