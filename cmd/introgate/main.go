// Command introgate validates introduction configuration and runs the
// lock mixin demonstration.
package main

import "github.com/Sentinel-Gate/introgate/cmd/introgate/cmd"

func main() {
	cmd.Execute()
}
