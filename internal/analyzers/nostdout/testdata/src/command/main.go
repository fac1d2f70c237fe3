package main

import (
	"fmt"
	"io"
	"os"
)

func run(w io.Writer) {
	fmt.Fprint(w, "ok")
}

func main() {
	run(os.Stdout)
	fmt.Print("banner") // want `fmt.Print writes to stdout`
}
