// predict3di encodes protein structures as strings of a structural alphabet,
// one letter per residue.
//
// Run "predict3di help" for the list of commands.
package main

func main() {
	Execute()
}
