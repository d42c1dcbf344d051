package txsource

import (
	"math/big"
	"testing"

	"github.com/satoshiforge/chainprim/internal/privatekey"
	"github.com/satoshiforge/chainprim/internal/script"
	"github.com/satoshiforge/chainprim/internal/transaction"
)

func mustPrivateKey(t *testing.T, secret int64) *privatekey.PrivateKey {
	t.Helper()
	pk, err := privatekey.New(big.NewInt(secret))
	if err != nil {
		t.Fatalf("privatekey.New: %v", err)
	}
	return pk
}

func TestMemorySourcePutAndLookup(t *testing.T) {
	pk := mustPrivateKey(t, 5001)
	h160 := pk.Point.Hash160(true)
	scriptPubkey := script.CreateP2pkhScript(h160)

	tx := transaction.NewTx(1, nil, []*transaction.TxOut{
		transaction.NewTxOut(5000, &scriptPubkey),
	}, 0, true)

	source := NewMemorySource()
	if err := source.Put(tx); err != nil {
		t.Fatalf("Put: %v", err)
	}

	id, err := tx.Id()
	if err != nil {
		t.Fatalf("Id: %v", err)
	}

	got, err := source.Lookup(id, true)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	gotID, err := got.Id()
	if err != nil {
		t.Fatalf("Id (looked up): %v", err)
	}
	if gotID != id {
		t.Errorf("Lookup returned tx with id %s, want %s", gotID, id)
	}
}

func TestMemorySourceLookupMissing(t *testing.T) {
	source := NewMemorySource()
	if _, err := source.Lookup("deadbeef", false); err == nil {
		t.Error("Lookup of an unregistered txid should fail")
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03}
	a := fingerprint(raw)
	b := fingerprint(raw)
	if a != b {
		t.Errorf("fingerprint is not deterministic: %s != %s", a, b)
	}
	if fingerprint([]byte{0x04}) == a {
		t.Error("fingerprint collided for distinct inputs")
	}
}

func TestExplorerSourceResolveByContentReusesParsedTx(t *testing.T) {
	pk := mustPrivateKey(t, 7001)
	h160 := pk.Point.Hash160(true)
	scriptPubkey := script.CreateP2pkhScript(h160)
	want := transaction.NewTx(1, nil, []*transaction.TxOut{
		transaction.NewTxOut(1234, &scriptPubkey),
	}, 0, true)

	e := NewExplorerSourceWithURL(nil, "https://example.test")
	fp := fingerprint([]byte{0xde, 0xad, 0xbe, 0xef})
	e.byContent[fp] = want

	got, err := e.resolveByContent(fp, []byte{0xde, 0xad, 0xbe, 0xef}, true)
	if err != nil {
		t.Fatalf("resolveByContent: %v", err)
	}
	if got != want {
		t.Error("resolveByContent should return the already-cached Tx instead of re-parsing")
	}
}

func TestExplorerSourceNetworkURL(t *testing.T) {
	e := NewExplorerSourceWithURL(nil, "https://example.test")
	if got, want := e.networkURL(true), "https://example.test/testnet/api"; got != want {
		t.Errorf("networkURL(true) = %q, want %q", got, want)
	}
	if got, want := e.networkURL(false), "https://example.test/api"; got != want {
		t.Errorf("networkURL(false) = %q, want %q", got, want)
	}
}

func TestExplorerSourceDefaultURL(t *testing.T) {
	e := NewExplorerSource(nil)
	if e.baseURL == "" {
		t.Error("NewExplorerSource should default baseURL to config.DefaultExplorerURL")
	}
}
