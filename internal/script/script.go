// Package script implements the transaction script language: a
// command list that is either an opcode byte or a length-prefixed
// data push, with PUSHDATA1/PUSHDATA2 framing for pushes over 75
// bytes. Only OP_DUP, OP_HASH160, and OP_HASH256 are executable;
// every other opcode is stored and displayed but not evaluated.
package script

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/satoshiforge/chainprim/internal/bitcoinerrors"
	"github.com/satoshiforge/chainprim/internal/bitcoinutil"
)

// Script is an ordered list of commands: each is either a single
// opcode byte or a data push of 1-520 bytes.
type Script [][]byte

// ParseScript reads a length-prefixed Script from reader, expanding
// OP_PUSHDATA1/2 framing into their data pushes.
func ParseScript(reader *bufio.Reader) (Script, error) {
	length, err := bitcoinutil.ReadVarint(reader)
	if err != nil {
		return nil, bitcoinerrors.Parse(0, "reading script length: %v", err)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return nil, bitcoinerrors.Parse(0, "reading script body: %v", err)
	}

	script := make(Script, 0)
	count := 0

	for count < int(length) {
		currentByte := buf[count]
		count++

		switch {
		case currentByte >= 1 && currentByte <= 75:
			n := int(currentByte)
			if count+n > len(buf) {
				return nil, bitcoinerrors.Parse(count, "data push of %d bytes runs past script end", n)
			}
			script = append(script, buf[count:count+n])
			count += n
		case currentByte == 0x4c:
			if count >= len(buf) {
				return nil, bitcoinerrors.Parse(count, "truncated OP_PUSHDATA1 length byte")
			}
			n := int(buf[count])
			count++
			if count+n > len(buf) {
				return nil, bitcoinerrors.Parse(count, "OP_PUSHDATA1 push of %d bytes runs past script end", n)
			}
			script = append(script, buf[count:count+n])
			count += n
		case currentByte == 0x4d:
			if count+2 > len(buf) {
				return nil, bitcoinerrors.Parse(count, "truncated OP_PUSHDATA2 length")
			}
			n := int(binary.LittleEndian.Uint16(buf[count : count+2]))
			count += 2
			if count+n > len(buf) {
				return nil, bitcoinerrors.Parse(count, "OP_PUSHDATA2 push of %d bytes runs past script end", n)
			}
			script = append(script, buf[count:count+n])
			count += n
		default:
			script = append(script, []byte{currentByte})
		}
	}

	if count != len(buf) {
		return nil, bitcoinerrors.Parse(count, "script parse ended before consuming all bytes")
	}

	return script, nil
}

// Parse replaces s with the Script read from reader.
func (s *Script) Parse(reader *bufio.Reader) error {
	script, err := ParseScript(reader)
	if err != nil {
		return err
	}
	*s = script
	return nil
}

// String renders each command: the opcode name if known, a raw hex
// push otherwise.
func (s *Script) String() string {
	var result []string
	for _, cmd := range *s {
		if len(cmd) == 1 {
			opCode := int(cmd[0])
			if name, ok := opCodeNames[opCode]; ok {
				result = append(result, name)
				continue
			}
			result = append(result, fmt.Sprintf("OP_[%d]", opCode))
			continue
		}
		result = append(result, fmt.Sprintf("%x", cmd))
	}
	return fmt.Sprintf(" %v", result)
}

// Add concatenates otherScript onto s, as combining a script_sig and
// a script_pub_key for evaluation does.
func (s *Script) Add(otherScript Script) Script {
	return append(*s, otherScript...)
}

func (s *Script) rawSerialize() ([]byte, error) {
	var result []byte

	for _, cmd := range *s {
		length := len(cmd)
		switch {
		case length == 1:
			result = append(result, cmd...)
		case length <= 75:
			result = append(result, byte(length))
			result = append(result, cmd...)
		case length < 0x100:
			result = append(result, 0x4c, byte(length))
			result = append(result, cmd...)
		case length <= 520:
			lenBytes := make([]byte, 2)
			binary.LittleEndian.PutUint16(lenBytes, uint16(length))
			result = append(result, 0x4d)
			result = append(result, lenBytes...)
			result = append(result, cmd...)
		default:
			return nil, bitcoinerrors.Precondition("script command of %d bytes exceeds the 520-byte push limit", length)
		}
	}
	return result, nil
}

// Serialize encodes s with its varint length prefix.
func (s *Script) Serialize() ([]byte, error) {
	rawResult, err := s.rawSerialize()
	if err != nil {
		return nil, err
	}

	varint, err := bitcoinutil.EncodeVarint(uint64(len(rawResult)))
	if err != nil {
		return nil, err
	}

	return append(varint, rawResult...), nil
}

// Evaluate runs s against a fresh data stack, executing OP_DUP,
// OP_HASH160, and OP_HASH256; every other opcode byte is rejected
// since this is not a full interpreter. It reports whether the stack
// is non-empty and its top element is a non-empty byte string when
// execution completes.
func (s *Script) Evaluate() (bool, error) {
	cmds := make(Script, len(*s))
	copy(cmds, *s)

	var stack Stack

	for len(cmds) > 0 {
		cmd := cmds[0]
		cmds = cmds[1:]

		if len(cmd) != 1 {
			stack.push(cmd)
			continue
		}

		var err error
		switch cmd[0] {
		case 0x76:
			err = opDup(&stack)
		case 0xa9:
			err = opHash160(&stack)
		case 0xaa:
			err = opHash256(&stack)
		default:
			name, ok := opCodeNames[int(cmd[0])]
			if !ok {
				name = fmt.Sprintf("OP_[%d]", cmd[0])
			}
			return false, bitcoinerrors.Precondition("opcode %s is not executable", name)
		}
		if err != nil {
			return false, err
		}
	}

	if len(stack) == 0 {
		return false, nil
	}
	top, err := stack.pop()
	if err != nil {
		return false, err
	}
	return len(top) > 0, nil
}

// TranslateToOps renders each command as its opcode name, for
// commands that are single opcode bytes.
func (s *Script) TranslateToOps() []string {
	ops := make([]string, 0, len(*s))
	for _, cmd := range *s {
		if len(cmd) == 1 {
			if name, ok := opCodeNames[int(cmd[0])]; ok {
				ops = append(ops, name)
				continue
			}
			ops = append(ops, fmt.Sprintf("OP_[%d]", cmd[0]))
			continue
		}
		ops = append(ops, fmt.Sprintf("%x", cmd))
	}
	return ops
}

// CreateP2pkhScript builds the standard pay-to-pubkey-hash
// script_pub_key: OP_DUP OP_HASH160 <h160> OP_EQUALVERIFY OP_CHECKSIG.
func CreateP2pkhScript(h160 []byte) Script {
	return Script{{0x76}, {0xa9}, h160, {0x88}, {0xac}}
}
