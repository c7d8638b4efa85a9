// Command satasim runs a SATA command layer against a simulated drive.
package main

func main() {
	Execute()
}
