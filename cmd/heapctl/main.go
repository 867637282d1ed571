// Command heapctl drives the heapkit allocators from the command line:
// it replays allocation traces and runs a small end-to-end demo.
package main

func main() {
	execute()
}
