package main

import "github.com/usermgmt/admin-console/internal/cli"

func main() {
	cli.Execute()
}
