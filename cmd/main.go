// Build to: bin/helm-refactor
package main

func main() {
	Execute()
}
