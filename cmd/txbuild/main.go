// Command txbuild builds a testnet transaction from -in/-out flags,
// signs its first input with a secret typed at the prompt, and prints
// the signed transaction's hex encoding.
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/satoshiforge/chainprim/internal/bitcoinutil"
	"github.com/satoshiforge/chainprim/internal/chainlog"
	"github.com/satoshiforge/chainprim/internal/config"
	"github.com/satoshiforge/chainprim/internal/privatekey"
	"github.com/satoshiforge/chainprim/internal/script"
	"github.com/satoshiforge/chainprim/internal/transaction"
	"github.com/satoshiforge/chainprim/internal/txsource"
)

func main() {
	var ins, outs config.StringSlice
	flag.Var(&ins, "in", "input as <prev_txid_hex>:<prev_index>")
	flag.Var(&outs, "out", "output as <amount_satoshis>:<address>")
	flag.Parse()

	log := chainlog.Default("txbuild")

	txIns, err := parseTxIns(ins)
	if err != nil {
		log.Fatalf("parsing -in: %v", err)
	}
	txOuts, err := parseTxOuts(outs)
	if err != nil {
		log.Fatalf("parsing -out: %v", err)
	}

	tx := transaction.NewTx(1, txIns, txOuts, 0, true)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("Type the secret you want to sign this transaction with: ")
	var secret string
	if scanner.Scan() {
		secret = scanner.Text()
	}
	fmt.Println()

	privateKey, err := privatekey.New(bitcoinutil.Hash256ToBigInt([]byte(secret)))
	if err != nil {
		log.Fatalf("deriving private key: %v", err)
	}

	source := txsource.NewExplorerSource(nil)
	if !tx.SignInput(0, privateKey, source) {
		log.Fatalf("signing input 0 failed")
	}

	fmt.Println("The following transaction was signed:")
	fmt.Println(tx.String())

	txBytes, err := tx.Serialize()
	if err != nil {
		log.Fatalf("serializing transaction: %v", err)
	}
	fmt.Printf("\nThe transaction is:\n\n%s\n", hex.EncodeToString(txBytes))
}

func parseTxIns(ins []string) ([]*transaction.TxIn, error) {
	txIns := make([]*transaction.TxIn, 0, len(ins))
	for _, in := range ins {
		parts := strings.Split(in, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid -in %q, want <txid>:<index>", in)
		}
		txID, err := hex.DecodeString(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid -in hex %q: %w", in, err)
		}
		index, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid -in index %q: %w", in, err)
		}
		txIns = append(txIns, transaction.NewTxIn(txID, uint32(index), &script.Script{}, 0xffffffff))
	}
	return txIns, nil
}

func parseTxOuts(outs []string) ([]*transaction.TxOut, error) {
	txOuts := make([]*transaction.TxOut, 0, len(outs))
	for _, out := range outs {
		parts := strings.Split(out, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid -out %q, want <amount>:<address>", out)
		}
		amount, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid -out amount %q: %w", out, err)
		}
		h160, err := bitcoinutil.DecodeBase58(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid -out address %q: %w", out, err)
		}
		scriptPubkey := script.CreateP2pkhScript(h160)
		txOuts = append(txOuts, transaction.NewTxOut(amount, &scriptPubkey))
	}
	return txOuts, nil
}
