package main

import "github.com/mobcash/backoffice/app/mobcashctl/cmd"

func main() {
	cmd.Execute()
}
