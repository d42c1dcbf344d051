// Command blockcheck parses an 80-byte block header from hex on
// stdin or as an argument and reports its proof-of-work, difficulty,
// and BIP signaling flags.
package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/satoshiforge/chainprim/internal/block"
	"github.com/satoshiforge/chainprim/internal/chainlog"
)

func main() {
	flag.Parse()
	log := chainlog.Default("blockcheck")

	var headerHex string
	if args := flag.Args(); len(args) > 0 {
		headerHex = args[0]
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print("Paste the 80-byte block header as hex: ")
		if scanner.Scan() {
			headerHex = scanner.Text()
		}
	}
	headerHex = strings.TrimSpace(headerHex)

	raw, err := hex.DecodeString(headerHex)
	if err != nil {
		log.Fatalf("decoding header hex: %v", err)
	}

	b, err := block.Parse(bytes.NewReader(raw))
	if err != nil {
		log.Fatalf("parsing header: %v", err)
	}

	hash, err := b.Hash()
	if err != nil {
		log.Fatalf("hashing header: %v", err)
	}

	fmt.Printf("hash:       %s\n", hex.EncodeToString(hash))
	fmt.Printf("target:     %x\n", b.Target())
	fmt.Printf("difficulty: %s\n", b.Difficulty().String())
	fmt.Printf("valid PoW:  %v\n", b.CheckPOW())
	fmt.Printf("BIP9:       %v\n", b.BIP9())
	fmt.Printf("BIP91:      %v\n", b.BIP91())
	fmt.Printf("BIP141:     %v\n", b.BIP141())
}
