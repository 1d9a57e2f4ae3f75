// Command breakxor breaks single-byte and repeating-key XOR.
//
// By default each line of input is hex-encoded ciphertext encrypted with a
// single byte. With -detect, only the line most likely to be English is
// printed. With -r, the whole input is base64-encoded ciphertext encrypted
// with a repeating key.
package main

import (
	"bufio"
	"encoding/base64"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/pmaddams/cryptanalysis/breakxor"
	"github.com/pmaddams/cryptanalysis/langcheck"
)

var (
	repeating = flag.Bool("r", false, "break repeating-key XOR (base64 input)")
	detect    = flag.Bool("detect", false, "print only the line encrypted with single-byte XOR")
	lang      = flag.Bool("lang", false, "check the plaintext with a language detector")
	verbose   = flag.Bool("v", false, "print keys and scores")
)

var detector *langcheck.Detector

var stdout io.Writer = os.Stdout

func main() {
	flag.Parse()
	if *lang {
		detector = langcheck.New()
	}
	var fn func(io.Reader) error
	switch {
	case *repeating:
		fn = decryptRepeating
	case *detect:
		fn = detectLine
	default:
		fn = decryptLines
	}
	files := flag.Args()
	if len(files) == 0 {
		if err := fn(os.Stdin); err != nil {
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
		if err := fn(f); err != nil {
			fmt.Fprintln(os.Stderr, errors.Wrap(err, file))
		}
		f.Close()
	}
}

// readLines reads hex-encoded lines.
func readLines(in io.Reader) ([][]byte, error) {
	var lines [][]byte
	input := bufio.NewScanner(in)
	for input.Scan() {
		line, err := hex.DecodeString(input.Text())
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, input.Err()
}

// decryptLines breaks each line separately.
func decryptLines(in io.Reader) error {
	lines, err := readLines(in)
	if err != nil {
		return err
	}
	for _, line := range lines {
		score, plaintext, key := breakxor.BreakSingleXOR(line)
		if *verbose {
			fmt.Fprintf(os.Stderr, "key %#02x score %d\n", key, score)
		}
		show(plaintext)
	}
	return nil
}

// detectLine prints the one line that decrypts to English.
func detectLine(in io.Reader) error {
	lines, err := readLines(in)
	if err != nil {
		return err
	}
	index, score, plaintext, key, err := breakxor.DetectSingleXOR(lines)
	if err != nil {
		return err
	}
	if *verbose {
		fmt.Fprintf(os.Stderr, "line %d key %#02x score %d\n", index+1, key, score)
	}
	show(plaintext)
	return nil
}

// decryptRepeating reads base64-encoded ciphertext and prints plaintext.
func decryptRepeating(in io.Reader) error {
	buf, err := io.ReadAll(base64.NewDecoder(base64.StdEncoding, in))
	if err != nil {
		return err
	}
	_, key, plaintext, err := breakxor.BreakRepeatingXOR(buf)
	if err != nil {
		return err
	}
	if *verbose {
		fmt.Fprintf(os.Stderr, "key %q\n", key)
	}
	show(plaintext)
	return nil
}

// show prints the plaintext, and the language detector's verdict if enabled.
func show(plaintext []byte) {
	fmt.Fprint(stdout, string(plaintext))
	if len(plaintext) == 0 || plaintext[len(plaintext)-1] != '\n' {
		fmt.Fprintln(stdout)
	}
	if detector != nil {
		fmt.Fprintf(os.Stderr, "english %v, confidence %.2f\n",
			detector.IsEnglish(string(plaintext)), detector.Confidence(string(plaintext)))
	}
}
