package script

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"reflect"
	"testing"
)

func TestParseScript(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected Script
		wantErr  bool
	}{
		{
			name:    "Empty data",
			input:   []byte{},
			wantErr: true,
		},
		{
			name:     "Valid script with just chars",
			input:    []byte{0x04, 't', 'e', 's', 't'},
			expected: Script{[]byte{'t'}, []byte{'e'}, []byte{'s'}, []byte{'t'}},
		},
		{
			name:     "Valid script with OP_PUSHDATA1",
			input:    []byte{0x06, 0x4C, 0x04, 't', 'e', 's', 't'},
			expected: Script{[]byte{'t', 'e', 's', 't'}},
		},
		{
			name:     "Valid script with OP_PUSHDATA2",
			input:    []byte{0x05, 0x4D, 0x02, 0x00, 'a', 'b'},
			expected: Script{[]byte{'a', 'b'}},
		},
		{
			name:     "Valid script with OP_PUSHDATA2 followed by an opcode byte",
			input:    []byte{0x06, 0x4D, 0x02, 0x00, 'c', 'd', 'e'},
			expected: Script{[]byte{'c', 'd'}, []byte{'e'}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := ParseScript(bufio.NewReader(bytes.NewBuffer(tt.input)))

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseScript() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(script, tt.expected) {
				t.Errorf("ParseScript() got = %v, want %v", script, tt.expected)
			}
		})
	}
}

func TestScriptParsing(t *testing.T) {
	scriptPubKeyHex := "6a47304402207899531a52d59a6de200179928ca900254a36b8dff8bb75f5f5d71b1cdc26125022008b422690b8461cb52c3cc30330b23d574351872b7c361e9aae3649071c1a7160121035d5c93d9ac96881f19ba1f686f15f009ded7c62efe85a872e6a19b43c15a2937"
	scriptPubKeyBytes, _ := hex.DecodeString(scriptPubKeyHex)
	scriptPubKey := bufio.NewReader(bytes.NewBuffer(scriptPubKeyBytes))

	script, err := ParseScript(scriptPubKey)
	if err != nil {
		t.Fatalf("ParseScript() error: %v", err)
	}

	wantCmd1, _ := hex.DecodeString("304402207899531a52d59a6de200179928ca900254a36b8dff8bb75f5f5d71b1cdc26125022008b422690b8461cb52c3cc30330b23d574351872b7c361e9aae3649071c1a71601")
	if !bytes.Equal(script[0], wantCmd1) {
		t.Errorf("ParseScript() cmds[0] = %x, want %x", script[0], wantCmd1)
	}

	wantCmd2, _ := hex.DecodeString("035d5c93d9ac96881f19ba1f686f15f009ded7c62efe85a872e6a19b43c15a2937")
	if !bytes.Equal(script[1], wantCmd2) {
		t.Errorf("ParseScript() cmds[1] = %x, want %x", script[1], wantCmd2)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	want := "6a47304402207899531a52d59a6de200179928ca900254a36b8dff8bb75f5f5d71b1cdc26125022008b422690b8461cb52c3cc30330b23d574351872b7c361e9aae3649071c1a7160121035d5c93d9ac96881f19ba1f686f15f009ded7c62efe85a872e6a19b43c15a2937"
	wantBytes, _ := hex.DecodeString(want)

	var s Script
	if err := s.Parse(bufio.NewReader(bytes.NewBuffer(wantBytes))); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	serialized, err := s.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	if !bytes.Equal(serialized, wantBytes) {
		t.Errorf("Serialize() round trip mismatch. Got: %x, Want: %s", serialized, want)
	}
}

func TestSerializePushdata1(t *testing.T) {
	push := bytes.Repeat([]byte{0xAB}, 100)
	s := Script{push}

	serialized, err := s.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	parsed, err := ParseScript(bufio.NewReader(bytes.NewBuffer(serialized)))
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	if !reflect.DeepEqual(parsed, s) {
		t.Errorf("round trip mismatch: got %v, want %v", parsed, s)
	}
}

func TestSerializeTooLong(t *testing.T) {
	s := Script{bytes.Repeat([]byte{0x01}, 521)}
	if _, err := s.Serialize(); err == nil {
		t.Errorf("Serialize should reject a push over 520 bytes")
	}
}

func TestCreateP2pkhScript(t *testing.T) {
	h160 := bytes.Repeat([]byte{0x11}, 20)
	s := CreateP2pkhScript(h160)
	want := Script{{0x76}, {0xa9}, h160, {0x88}, {0xac}}
	if !reflect.DeepEqual(s, want) {
		t.Errorf("CreateP2pkhScript = %v, want %v", s, want)
	}
}

func TestEvaluateP2pkhStyle(t *testing.T) {
	// <secret> OP_DUP OP_HASH160: leaves hash160(secret), a non-empty
	// top element, so evaluation succeeds.
	s := Script{[]byte("secret"), {0x76}, {0xa9}}
	ok, err := s.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !ok {
		t.Errorf("Evaluate() = false, want true")
	}
}

func TestEvaluateEmptyStackFails(t *testing.T) {
	s := Script{{0x76}}
	ok, err := s.Evaluate()
	if err == nil {
		t.Fatalf("Evaluate() should error when OP_DUP runs on an empty stack")
	}
	if ok {
		t.Errorf("Evaluate() should not report success alongside an error")
	}
}

func TestEvaluateUnsupportedOpcode(t *testing.T) {
	s := Script{[]byte("x"), {0xac}}
	if _, err := s.Evaluate(); err == nil {
		t.Errorf("Evaluate should reject an opcode outside OP_DUP/OP_HASH160/OP_HASH256")
	}
}

func TestTranslateToOps(t *testing.T) {
	s := Script{{0x76}, {0xa9}, []byte{0x01, 0x02}, {0xac}}
	ops := s.TranslateToOps()
	want := []string{"OP_DUP", "OP_HASH160", "0102", "OP_CHECKSIG"}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("TranslateToOps() = %v, want %v", ops, want)
	}
}
