// Command detectmode creates oracles that encrypt in ECB or CBC mode at
// random, and reports how often the mode is detected correctly.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pmaddams/cryptanalysis/attack"
	"github.com/pmaddams/cryptanalysis/modes"
	"github.com/pmaddams/cryptanalysis/oracle"
)

var (
	trials     = flag.Int("n", 100, "number of oracles")
	cipherName = flag.String("cipher", "aes", "block cipher (aes or blowfish)")
	noise      = flag.Bool("noise", true, "surround input with random bytes")
)

func main() {
	flag.Parse()
	c, err := oracle.ParseCipher(*cipherName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	opts := []oracle.Option{oracle.WithCipher(c)}
	if *noise {
		opts = append(opts, oracle.WithNoise())
	}
	var correct int
	for i := 0; i < *trials; i++ {
		secret := modes.RandomBytes(modes.RandomInRange(0, 64))
		o, want, err := oracle.NewRandom(secret, opts...)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		got, err := attack.DetectMode(o, c.BlockSize())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		if got == want {
			correct++
		} else {
			fmt.Printf("trial %d: detected %v, want %v\n", i+1, got, want)
		}
	}
	fmt.Printf("%d/%d correct\n", correct, *trials)
}
