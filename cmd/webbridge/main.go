// Command webbridge hosts bridged web views headlessly and works with their
// settings files.
package main

import "github.com/go-drift/webbridge/cmd/webbridge/cmd"

func main() {
	cmd.Execute()
}
