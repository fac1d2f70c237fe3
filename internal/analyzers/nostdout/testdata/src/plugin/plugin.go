package plugin

import (
	"fmt"
	"io"
	"os"
)

func emit(w io.Writer) {
	fmt.Fprintf(w, "PUTVAL %q\n", "x")
	fmt.Fprintln(os.Stderr, "diagnostic")
}

func bad() {
	fmt.Println("value")  // want `fmt.Println writes to stdout`
	fmt.Printf("%d\n", 1) // want `fmt.Printf writes to stdout`
	emit(os.Stdout)       // want `os.Stdout is reserved for PUTVAL records`
	println("debug")      // want `builtin println writes to stderr`
	_ = fmt.Sprintf("%s", "harmless")
}
