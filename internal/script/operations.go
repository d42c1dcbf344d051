package script

import (
	"github.com/satoshiforge/chainprim/internal/bitcoinerrors"
	"github.com/satoshiforge/chainprim/internal/bitcoinutil"
)

// Stack is the data stack a Script evaluates against: byte strings,
// pushed and popped from the top (the end of the slice).
type Stack [][]byte

func (s *Stack) push(value []byte) {
	*s = append(*s, value)
}

func (s *Stack) pop() ([]byte, error) {
	if len(*s) < 1 {
		return nil, bitcoinerrors.Precondition("stack is empty")
	}
	top := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return top, nil
}

// opDup duplicates the top stack element.
func opDup(stack *Stack) error {
	if len(*stack) < 1 {
		return bitcoinerrors.Precondition("OP_DUP on empty stack")
	}
	stack.push((*stack)[len(*stack)-1])
	return nil
}

// opHash160 replaces the top element with hash160(element).
func opHash160(stack *Stack) error {
	element, err := stack.pop()
	if err != nil {
		return bitcoinerrors.Precondition("OP_HASH160 on empty stack")
	}
	stack.push(bitcoinutil.Hash160(element))
	return nil
}

// opHash256 replaces the top element with hash256(element).
func opHash256(stack *Stack) error {
	element, err := stack.pop()
	if err != nil {
		return bitcoinerrors.Precondition("OP_HASH256 on empty stack")
	}
	stack.push(bitcoinutil.Hash256(element))
	return nil
}

// opCodeNames names opcodes for Script.String() and TranslateToOps()
// display. Opcodes it does not execute are still named here so the
// display stays readable; execution of anything but OP_DUP,
// OP_HASH160, and OP_HASH256 is out of scope.
var opCodeNames = map[int]string{
	0x00: "OP_0",
	0x4c: "OP_PUSHDATA1",
	0x4d: "OP_PUSHDATA2",
	0x4f: "OP_1NEGATE",
	0x51: "OP_1",
	0x61: "OP_NOP",
	0x63: "OP_IF",
	0x64: "OP_NOTIF",
	0x67: "OP_ELSE",
	0x68: "OP_ENDIF",
	0x69: "OP_VERIFY",
	0x6a: "OP_RETURN",
	0x6b: "OP_TOALTSTACK",
	0x6c: "OP_FROMALTSTACK",
	0x6d: "OP_2DROP",
	0x73: "OP_IFDUP",
	0x74: "OP_DEPTH",
	0x75: "OP_DROP",
	0x76: "OP_DUP",
	0x77: "OP_NIP",
	0x78: "OP_OVER",
	0x7c: "OP_SWAP",
	0x7d: "OP_TUCK",
	0x87: "OP_EQUAL",
	0x88: "OP_EQUALVERIFY",
	0x8b: "OP_1ADD",
	0x8c: "OP_1SUB",
	0x8f: "OP_NEGATE",
	0x90: "OP_ABS",
	0x91: "OP_NOT",
	0x93: "OP_ADD",
	0x94: "OP_SUB",
	0x9a: "OP_BOOLAND",
	0x9b: "OP_BOOLOR",
	0x9c: "OP_NUMEQUAL",
	0x9d: "OP_NUMEQUALVERIFY",
	0x9e: "OP_NUMNOTEQUAL",
	0x9f: "OP_LESSTHAN",
	0xa0: "OP_GREATERTHAN",
	0xa1: "OP_LESSTHANOREQUAL",
	0xa2: "OP_GREATERTHANOREQUAL",
	0xa3: "OP_MIN",
	0xa4: "OP_MAX",
	0xa5: "OP_WITHIN",
	0xa6: "OP_RIPEMD160",
	0xa7: "OP_SHA1",
	0xa8: "OP_SHA256",
	0xa9: "OP_HASH160",
	0xaa: "OP_HASH256",
	0xab: "OP_CODESEPARATOR",
	0xac: "OP_CHECKSIG",
	0xad: "OP_CHECKSIGVERIFY",
	0xae: "OP_CHECKMULTISIG",
	0xaf: "OP_CHECKMULTISIGVERIFY",
	0xb1: "OP_CHECKLOCKTIMEVERIFY",
	0xb2: "OP_CHECKSEQUENCEVERIFY",
}
