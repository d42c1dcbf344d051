package secp256k1

import (
	"encoding/hex"
	"math/big"
	"testing"
)

func TestOrderOfGenerator(t *testing.T) {
	identity, err := NewPoint(nil, nil)
	if err != nil {
		t.Fatalf("NewPoint(identity): %v", err)
	}
	result, err := G.ScalarMultiplication(N)
	if err != nil {
		t.Fatalf("G.ScalarMultiplication(N): %v", err)
	}
	if !result.Equal(&identity.Point) {
		t.Errorf("N*G should be the identity point, got %s", result)
	}
}

func TestSerializeUncompressed(t *testing.T) {
	secret := big.NewInt(5000)
	point, err := G.ScalarMultiplication(secret)
	if err != nil {
		t.Fatalf("ScalarMultiplication: %v", err)
	}
	want := "04ffe558e388852f0120e46af2d1b370f85854a8eb0841811ece0e3e03d282d57c315dc72890a4f10a1481c031b03b351b0dc79901ca18a00cf009dbdb157a1d10"
	got := hex.EncodeToString(point.Serialize(false))
	if got != want {
		t.Errorf("Serialize(false) = %s, want %s", got, want)
	}
}

func TestSerializeParseRoundTrip(t *testing.T) {
	secret := big.NewInt(12345)
	point, err := G.ScalarMultiplication(secret)
	if err != nil {
		t.Fatalf("ScalarMultiplication: %v", err)
	}

	for _, compressed := range []bool{true, false} {
		sec := point.Serialize(compressed)
		parsed, err := ParseSEC(sec)
		if err != nil {
			t.Fatalf("ParseSEC(compressed=%v): %v", compressed, err)
		}
		if !parsed.Equal(&point.Point) {
			t.Errorf("round trip compressed=%v: got %s, want %s", compressed, parsed, point)
		}
	}
}

func TestAddress(t *testing.T) {
	tests := []struct {
		secret     *big.Int
		compressed bool
		testnet    bool
		want       string
	}{
		{big.NewInt(5002), false, true, "mmTPbXQFxboEtNRkwfh6K51jvdtHLxGeMA"},
		{new(big.Int).Exp(big.NewInt(2020), big.NewInt(5), nil), true, true, "mopVkxp8UhXqRYbCYJsbeE1h1fiF64jcoH"},
	}

	for _, tc := range tests {
		point, err := G.ScalarMultiplication(tc.secret)
		if err != nil {
			t.Fatalf("ScalarMultiplication(%s): %v", tc.secret, err)
		}
		got := point.Address(tc.compressed, tc.testnet)
		if got != tc.want {
			t.Errorf("Address(secret=%s, compressed=%v, testnet=%v) = %s, want %s", tc.secret, tc.compressed, tc.testnet, got, tc.want)
		}
	}
}

func TestParseSECRejectsBadPrefix(t *testing.T) {
	bad := make([]byte, 33)
	bad[0] = 0x05
	if _, err := ParseSEC(bad); err == nil {
		t.Errorf("ParseSEC should reject an unrecognized prefix byte")
	}
}

func TestParseSECRejectsShortInput(t *testing.T) {
	if _, err := ParseSEC([]byte{0x02, 0x01}); err == nil {
		t.Errorf("ParseSEC should reject input shorter than 33 bytes")
	}
}
