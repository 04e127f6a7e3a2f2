// Command xfilesctl drives an X-FILES host from the command line.
package main

import "github.com/sarchlab/xfiles/xfilesctl/cmd"

func main() {
	cmd.Execute()
}
