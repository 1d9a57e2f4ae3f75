// Command breakecb recovers the secret appended by an ECB encryption oracle,
// one byte at a time.
//
// Each file argument holds a base64-encoded secret for its own oracle. With
// no arguments, a built-in secret is used.
package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/pmaddams/cryptanalysis/attack"
	"github.com/pmaddams/cryptanalysis/modes"
	"github.com/pmaddams/cryptanalysis/oracle"
)

const secret = `Um9sbGluJyBpbiBteSA1LjAKV2l0aCBteSByYWctdG9wIGRvd24gc28gbXkg
aGFpciBjYW4gYmxvdwpUaGUgZ2lybGllcyBvbiBzdGFuZGJ5IHdhdmluZyBq
dXN0IHRvIHNheSBoaQpEaWQgeW91IHN0b3A/IE5vLCBJIGp1c3QgZHJvdmUg
YnkK`

var (
	cipherName = flag.String("cipher", "aes", "block cipher (aes or blowfish)")
	seed       = flag.String("seed", "", "derive the oracle key from a seed")
	verbose    = flag.Bool("v", false, "trace each stage of the attack")
)

func main() {
	flag.Parse()
	c, err := oracle.ParseCipher(*cipherName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	opts := []oracle.Option{oracle.WithCipher(c)}
	if *seed != "" {
		opts = append(opts, oracle.WithSeed([]byte(*seed)))
	}
	var logger *log.Logger
	if *verbose {
		logger = log.New(os.Stderr, "breakecb: ", 0)
	}

	files := flag.Args()
	if len(files) == 0 {
		if err := run(strings.NewReader(secret), opts, logger); err != nil {
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
		if err := run(f, opts, logger); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		f.Close()
	}
}

// run reads a base64-encoded secret, hides it in an oracle, and prints what
// the attack recovers.
func run(in io.Reader, opts []oracle.Option, logger *log.Logger) error {
	buf, err := io.ReadAll(base64.NewDecoder(base64.StdEncoding, in))
	if err != nil {
		return err
	}
	o, err := oracle.New(modes.ECB, buf, opts...)
	if err != nil {
		return err
	}
	res, err := attack.RecoverSecret(o, attack.WithLogger(logger))
	if err != nil {
		return err
	}
	fmt.Print(string(res))
	return nil
}
