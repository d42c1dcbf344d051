// Command keygen derives a WIF private key and an address from a
// secret phrase typed at the prompt.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/satoshiforge/chainprim/internal/bitcoinutil"
	"github.com/satoshiforge/chainprim/internal/chainlog"
	"github.com/satoshiforge/chainprim/internal/privatekey"
)

func main() {
	var testnet bool
	var compressed bool
	flag.BoolVar(&testnet, "testnet", true, "derive a testnet address/WIF")
	flag.BoolVar(&compressed, "compressed", true, "use a compressed SEC pubkey")
	flag.Parse()

	log := chainlog.Default("keygen")

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("Type a long secret that only you know: ")
	var secret string
	if scanner.Scan() {
		secret = scanner.Text()
	}
	fmt.Println()

	privateKey, err := privatekey.New(bitcoinutil.Hash256ToBigInt([]byte(secret)))
	if err != nil {
		log.Fatalf("deriving private key: %v", err)
	}

	address := privateKey.Point.Address(compressed, testnet)
	wif := privateKey.Serialize(compressed, testnet)

	fmt.Println("Address:")
	fmt.Println(address)
	fmt.Println()
	fmt.Println("WIF private key:")
	fmt.Println(wif)
}
