// Command detectecb prints the hex-encoded lines of input that contain a
// repeated block, the mark of ECB mode.
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pmaddams/cryptanalysis/attack"
)

var blockSize = flag.Int("b", 16, "block size")

func main() {
	flag.Parse()
	if *blockSize <= 0 {
		fmt.Fprintln(os.Stderr, "detectecb: block size must be positive")
		os.Exit(2)
	}
	files := flag.Args()
	if len(files) == 0 {
		if err := detect(os.Stdin); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		return
	}
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if err := detect(f); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		f.Close()
	}
}

// detect reads hex-encoded input and prints the lines encrypted with ECB.
func detect(in io.Reader) error {
	input := bufio.NewScanner(in)
	for input.Scan() {
		line, err := hex.DecodeString(input.Text())
		if err != nil {
			return err
		}
		if attack.HasRepeatedBlocks(line, *blockSize) {
			fmt.Println(hex.EncodeToString(line))
		}
	}
	return input.Err()
}
