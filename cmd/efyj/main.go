// Command efyj is the CLI surface over the efyj library facade (spec
// §6.4): five mutually exclusive subcommands dispatched over model (.dxi)
// and options (.csv) file arguments.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCommand()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return exitCode(err)
	}
	return 0
}
