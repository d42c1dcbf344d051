// Command txfetch resolves a transaction ID against a block-explorer
// and prints its parsed representation.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/satoshiforge/chainprim/internal/chainlog"
	"github.com/satoshiforge/chainprim/internal/txsource"
)

func main() {
	var testnet bool
	flag.BoolVar(&testnet, "testnet", false, "resolve against the testnet explorer")
	flag.Parse()

	log := chainlog.Default("txfetch")

	args := flag.Args()
	if len(args) == 0 {
		fmt.Println("usage: txfetch [-testnet] <txid>")
		os.Exit(2)
	}
	txID := args[0]

	source := txsource.NewExplorerSource(nil)
	tx, err := source.Lookup(txID, testnet)
	if err != nil {
		log.Fatalf("looking up %s: %v", txID, err)
	}

	fmt.Println(tx.String())
}
