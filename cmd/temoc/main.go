// Command temoc runs Markdown acceptance tests against a system under
// test speaking the Slim wire protocol.
package main

import (
	"os"

	"github.com/temoc-project/temoc/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
