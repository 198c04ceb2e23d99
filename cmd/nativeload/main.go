// Command nativeload extracts, verifies and loads the native libraries
// bundled into it. See "nativeload --help".
package main

import "github.com/oshokin/nativeload/cmd/nativeload/cmd"

func main() {
	cmd.Execute()
}
