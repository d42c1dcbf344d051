// Package transaction implements the variable-length transaction wire
// format: version, inputs, outputs, locktime. It never performs I/O
// itself — resolving the value and script_pub_key a TxIn spends goes
// through the PrevTxSource capability a caller supplies, keeping the
// core network-free and synchronously testable.
package transaction

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"slices"

	"github.com/satoshiforge/chainprim/internal/bitcoinerrors"
	"github.com/satoshiforge/chainprim/internal/bitcoinutil"
	"github.com/satoshiforge/chainprim/internal/privatekey"
	"github.com/satoshiforge/chainprim/internal/script"
	"github.com/satoshiforge/chainprim/internal/secp256k1"
	"github.com/satoshiforge/chainprim/internal/signature"
)

// SigHashAll is the only signature hash type this module produces.
const SigHashAll = uint32(1)

// PrevTxSource resolves a transaction ID to the fully parsed
// transaction it names, so TxIn.Value and TxIn.ScriptPubkey never
// need to fetch or parse anything themselves.
type PrevTxSource interface {
	Lookup(txID string, testnet bool) (*Tx, error)
}

// Tx is a transaction: an ordered list of inputs, an ordered list of
// outputs, a version, and a locktime. Testnet affects only the
// address/WIF prefixes a caller derives from it and which network a
// PrevTxSource lookup targets.
type Tx struct {
	Version  uint32
	TxIns    []*TxIn
	TxOuts   []*TxOut
	Locktime uint32
	Testnet  bool
}

// NewTx constructs a Tx from its parts.
func NewTx(version uint32, txIns []*TxIn, txOuts []*TxOut, locktime uint32, testnet bool) *Tx {
	return &Tx{
		Version:  version,
		TxIns:    txIns,
		TxOuts:   txOuts,
		Locktime: locktime,
		Testnet:  testnet,
	}
}

func (tx *Tx) String() string {
	txInsStr := ""
	for _, txIn := range tx.TxIns {
		txInsStr += fmt.Sprintf("%s\n", txIn.String())
	}
	txOutsStr := ""
	for _, txOut := range tx.TxOuts {
		txOutsStr += fmt.Sprintf("%s\n", txOut.String())
	}
	id, err := tx.Id()
	if err != nil {
		return ""
	}
	return fmt.Sprintf("tx: %s\nversion: %d\ntx_ins:\n%s\n"+
		"tx_outs:\n%s\nlocktime: %d", id, tx.Version, txInsStr, txOutsStr, tx.Locktime)
}

// Id is the transaction identifier: hash256 of its serialization,
// byte-reversed, hex-encoded.
func (tx *Tx) Id() (string, error) {
	hash256, err := tx.Hash()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(hash256), nil
}

// Hash is hash256 of tx's serialization, byte-reversed.
func (tx *Tx) Hash() ([]byte, error) {
	s, err := tx.Serialize()
	if err != nil {
		return nil, err
	}

	hash256 := bitcoinutil.Hash256(s)
	slices.Reverse(hash256)
	return hash256, nil
}

// ParseTx reads a Tx from reader.
func ParseTx(reader *bufio.Reader, testnet bool) (*Tx, error) {
	var version uint32
	if err := binary.Read(reader, binary.LittleEndian, &version); err != nil {
		return nil, bitcoinerrors.Parse(0, "reading tx version: %v", err)
	}

	numInputs, err := bitcoinutil.ReadVarint(reader)
	if err != nil {
		return nil, bitcoinerrors.Parse(4, "reading input count: %v", err)
	}

	inputs := make([]*TxIn, 0, numInputs)
	for i := 0; i < int(numInputs); i++ {
		txIn, err := ParseTxIn(reader)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, txIn)
	}

	numOutputs, err := bitcoinutil.ReadVarint(reader)
	if err != nil {
		return nil, bitcoinerrors.Parse(0, "reading output count: %v", err)
	}

	outputs := make([]*TxOut, 0, numOutputs)
	for i := 0; i < int(numOutputs); i++ {
		txOut, err := ParseTxOut(reader)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, txOut)
	}

	var locktime uint32
	if err := binary.Read(reader, binary.LittleEndian, &locktime); err != nil {
		return nil, bitcoinerrors.Parse(0, "reading locktime: %v", err)
	}

	return NewTx(version, inputs, outputs, locktime, testnet), nil
}

// Serialize encodes tx in the wire format ParseTx reads.
func (tx *Tx) Serialize() ([]byte, error) {
	result := make([]byte, 4)
	binary.LittleEndian.PutUint32(result, tx.Version)

	numInputs, err := bitcoinutil.EncodeVarint(uint64(len(tx.TxIns)))
	if err != nil {
		return nil, err
	}
	result = append(result, numInputs...)

	for _, txIn := range tx.TxIns {
		serializedTxIn, err := txIn.Serialize()
		if err != nil {
			return nil, err
		}
		result = append(result, serializedTxIn...)
	}

	numOutputs, err := bitcoinutil.EncodeVarint(uint64(len(tx.TxOuts)))
	if err != nil {
		return nil, err
	}
	result = append(result, numOutputs...)

	for _, txOut := range tx.TxOuts {
		serializedTxOut, err := txOut.Serialize()
		if err != nil {
			return nil, err
		}
		result = append(result, serializedTxOut...)
	}

	locktimeBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(locktimeBytes, tx.Locktime)
	result = append(result, locktimeBytes...)

	return result, nil
}

// Fee returns sum(inputs.value) - sum(outputs.amount), resolving each
// input's value through source. The result may be negative for a
// malformed transaction; callers decide policy.
func (tx *Tx) Fee(source PrevTxSource) (int64, error) {
	var inputSum, outputSum int64

	for _, txIn := range tx.TxIns {
		value, err := txIn.Value(source, tx.Testnet)
		if err != nil {
			return 0, err
		}
		inputSum += int64(value)
	}

	for _, txOut := range tx.TxOuts {
		outputSum += int64(txOut.Amount)
	}

	return inputSum - outputSum, nil
}

// SigHash computes the integer signature hash for inputIndex: the
// transaction serialized with every other input's script_sig emptied
// and the input being signed's script_sig set to its script_pub_key
// (or redeemScript, if given), followed by the SIGHASH_ALL type.
func (tx *Tx) SigHash(inputIndex uint32, source PrevTxSource, redeemScript *script.Script) (*big.Int, error) {
	result := make([]byte, 4)
	binary.LittleEndian.PutUint32(result, tx.Version)

	numInputs, err := bitcoinutil.EncodeVarint(uint64(len(tx.TxIns)))
	if err != nil {
		return nil, err
	}
	result = append(result, numInputs...)

	for i, txIn := range tx.TxIns {
		scriptSig := &script.Script{}
		if i == int(inputIndex) {
			scriptSig, err = scriptSigForSigning(txIn, source, tx.Testnet, redeemScript)
			if err != nil {
				return nil, err
			}
		}
		txInModified := NewTxIn(txIn.PrevTx, txIn.PrevIndex, scriptSig, txIn.Sequence)
		txInModifiedBytes, err := txInModified.Serialize()
		if err != nil {
			return nil, err
		}
		result = append(result, txInModifiedBytes...)
	}

	numOutputs, err := bitcoinutil.EncodeVarint(uint64(len(tx.TxOuts)))
	if err != nil {
		return nil, err
	}
	result = append(result, numOutputs...)

	for _, txOut := range tx.TxOuts {
		serializedTxOut, err := txOut.Serialize()
		if err != nil {
			return nil, err
		}
		result = append(result, serializedTxOut...)
	}

	locktimeBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(locktimeBytes, tx.Locktime)
	result = append(result, locktimeBytes...)

	hashType := make([]byte, 4)
	binary.LittleEndian.PutUint32(hashType, SigHashAll)
	result = append(result, hashType...)

	resultHash256 := bitcoinutil.Hash256(result)

	return new(big.Int).SetBytes(resultHash256), nil
}

func scriptSigForSigning(txIn *TxIn, source PrevTxSource, testnet bool, redeemScript *script.Script) (*script.Script, error) {
	if redeemScript != nil {
		return redeemScript, nil
	}
	return txIn.ScriptPubkey(source, testnet)
}

// p2pkhHash160 returns the 20-byte hash a standard
// pay-to-pubkey-hash script_pub_key locks to, and whether
// scriptPubkey has that shape.
func p2pkhHash160(scriptPubkey *script.Script) ([]byte, bool) {
	cmds := *scriptPubkey
	if len(cmds) != 5 {
		return nil, false
	}
	if len(cmds[0]) != 1 || cmds[0][0] != 0x76 { // OP_DUP
		return nil, false
	}
	if len(cmds[1]) != 1 || cmds[1][0] != 0xa9 { // OP_HASH160
		return nil, false
	}
	if len(cmds[2]) != 20 {
		return nil, false
	}
	if len(cmds[3]) != 1 || cmds[3][0] != 0x88 { // OP_EQUALVERIFY
		return nil, false
	}
	if len(cmds[4]) != 1 || cmds[4][0] != 0xac { // OP_CHECKSIG
		return nil, false
	}
	return cmds[2], true
}

// VerifyInput reports whether the input at index unlocks a standard
// pay-to-pubkey-hash output: its script_sig's SEC pubkey hashes to
// the output's locked hash, and its DER signature verifies against
// the input's signature hash. Opcode execution (Script.Evaluate) only
// covers OP_DUP/OP_HASH160/OP_HASH256 and cannot run OP_CHECKSIG, so
// signature checking happens here directly.
func (tx *Tx) VerifyInput(index uint32, source PrevTxSource) bool {
	txIn := tx.TxIns[index]
	scriptPubkey, err := txIn.ScriptPubkey(source, tx.Testnet)
	if err != nil {
		return false
	}

	wantHash160, ok := p2pkhHash160(scriptPubkey)
	if !ok {
		return false
	}

	cmds := *txIn.ScriptSig
	if len(cmds) != 2 {
		return false
	}
	sigWithHashType, sec := cmds[0], cmds[1]
	if len(sigWithHashType) == 0 {
		return false
	}

	if !bytes.Equal(bitcoinutil.Hash160(sec), wantHash160) {
		return false
	}

	pubPoint, err := secp256k1.ParseSEC(sec)
	if err != nil {
		return false
	}

	sig, err := signature.ParseDER(sigWithHashType[:len(sigWithHashType)-1])
	if err != nil {
		return false
	}

	z, err := tx.SigHash(index, source, nil)
	if err != nil {
		return false
	}

	return signature.Verify(pubPoint, z, sig)
}

// Verify reports whether every input's script_sig validates and the
// transaction does not spend more than its inputs provide.
func (tx *Tx) Verify(source PrevTxSource) bool {
	fee, err := tx.Fee(source)
	if err != nil || fee < 0 {
		return false
	}

	for i := range tx.TxIns {
		if !tx.VerifyInput(uint32(i), source) {
			return false
		}
	}
	return true
}

// SignInput signs input inputIndex with privateKey and installs the
// resulting script_sig, returning whether the installed signature
// verifies.
func (tx *Tx) SignInput(inputIndex uint32, privateKey *privatekey.PrivateKey, source PrevTxSource) bool {
	const compressed = true

	z, err := tx.SigHash(inputIndex, source, nil)
	if err != nil {
		return false
	}

	derSig, err := privateKey.Sign(z)
	if err != nil {
		return false
	}

	sig := append(derSig.Serialize(), byte(SigHashAll))
	sec := privateKey.Point.Serialize(compressed)

	scriptSig := script.Script{sig, sec}
	tx.TxIns[inputIndex].ScriptSig = &scriptSig

	return tx.VerifyInput(inputIndex, source)
}

// IsCoinbase reports whether tx is a coinbase transaction: a single
// input whose prev_tx is all zero bytes and whose prev_index is
// 0xffffffff.
func (tx *Tx) IsCoinbase() bool {
	if len(tx.TxIns) != 1 {
		return false
	}

	firstInput := tx.TxIns[0]

	if !bytes.Equal(firstInput.PrevTx, make([]byte, 32)) {
		return false
	}

	return firstInput.PrevIndex == 0xffffffff
}

// CoinbaseHeight returns the block height a coinbase transaction
// encodes as the first push of its script_sig (BIP34).
func (tx *Tx) CoinbaseHeight() (uint32, error) {
	if !tx.IsCoinbase() {
		return 0, bitcoinerrors.Precondition("not a coinbase transaction")
	}

	if len(*tx.TxIns[0].ScriptSig) == 0 {
		return 0, bitcoinerrors.Precondition("coinbase transaction has no script")
	}

	element := (*tx.TxIns[0].ScriptSig)[0]
	padded := make([]byte, 4)
	copy(padded, element)

	return binary.LittleEndian.Uint32(padded), nil
}

// TxIn is a transaction input: the output it spends, its unlocking
// script, and its sequence number.
type TxIn struct {
	PrevTx    []byte
	PrevIndex uint32
	ScriptSig *script.Script
	Sequence  uint32
}

// NewTxIn constructs a TxIn from its parts.
func NewTxIn(prevTx []byte, prevIndex uint32, scriptSig *script.Script, sequence uint32) *TxIn {
	return &TxIn{
		PrevTx:    prevTx,
		PrevIndex: prevIndex,
		ScriptSig: scriptSig,
		Sequence:  sequence,
	}
}

func (txIn *TxIn) String() string {
	return fmt.Sprintf("%s:%d", hex.EncodeToString(txIn.PrevTx), txIn.PrevIndex)
}

// ParseTxIn reads a TxIn from reader. prev_tx is stored big-endian
// (display convention) though the wire format carries it
// little-endian.
func ParseTxIn(reader *bufio.Reader) (*TxIn, error) {
	prevTx := make([]byte, 32)
	if _, err := io.ReadFull(reader, prevTx); err != nil {
		return nil, bitcoinerrors.Parse(0, "reading prev_tx: %v", err)
	}
	slices.Reverse(prevTx)

	var prevIndex uint32
	if err := binary.Read(reader, binary.LittleEndian, &prevIndex); err != nil {
		return nil, bitcoinerrors.Parse(32, "reading prev_index: %v", err)
	}

	scriptSig, err := script.ParseScript(reader)
	if err != nil {
		return nil, err
	}

	var sequence uint32
	if err := binary.Read(reader, binary.LittleEndian, &sequence); err != nil {
		return nil, bitcoinerrors.Parse(0, "reading sequence: %v", err)
	}

	return NewTxIn(prevTx, prevIndex, &scriptSig, sequence), nil
}

// Serialize encodes txIn in the wire format ParseTxIn reads.
func (txIn *TxIn) Serialize() ([]byte, error) {
	var result []byte

	prevTxLittleEndian := make([]byte, 32)
	copy(prevTxLittleEndian, txIn.PrevTx)
	slices.Reverse(prevTxLittleEndian)
	result = append(result, prevTxLittleEndian...)

	prevIndexBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(prevIndexBytes, txIn.PrevIndex)
	result = append(result, prevIndexBytes...)

	scriptSig, err := txIn.ScriptSig.Serialize()
	if err != nil {
		return nil, err
	}
	result = append(result, scriptSig...)

	sequenceBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(sequenceBytes, txIn.Sequence)
	result = append(result, sequenceBytes...)

	return result, nil
}

func (txIn *TxIn) fetchTx(source PrevTxSource, testnet bool) (*Tx, error) {
	return source.Lookup(hex.EncodeToString(txIn.PrevTx), testnet)
}

// Value resolves the amount of the output this input spends, via
// source.
func (txIn *TxIn) Value(source PrevTxSource, testnet bool) (uint64, error) {
	tx, err := txIn.fetchTx(source, testnet)
	if err != nil {
		return 0, err
	}

	numOutputs := uint32(len(tx.TxOuts))
	if txIn.PrevIndex >= numOutputs {
		return 0, bitcoinerrors.Precondition("previous index %d out of range for %d transaction outputs", txIn.PrevIndex, numOutputs)
	}

	return tx.TxOuts[txIn.PrevIndex].Amount, nil
}

// ScriptPubkey resolves the script_pub_key of the output this input
// spends, via source.
func (txIn *TxIn) ScriptPubkey(source PrevTxSource, testnet bool) (*script.Script, error) {
	tx, err := txIn.fetchTx(source, testnet)
	if err != nil {
		return nil, err
	}

	numOutputs := uint32(len(tx.TxOuts))
	if txIn.PrevIndex >= numOutputs {
		return nil, bitcoinerrors.Precondition("previous index %d out of range for %d transaction outputs", txIn.PrevIndex, numOutputs)
	}

	return tx.TxOuts[txIn.PrevIndex].ScriptPubkey, nil
}

// TxOut is a transaction output: an amount in satoshis and the
// script that locks it.
type TxOut struct {
	Amount       uint64
	ScriptPubkey *script.Script
}

// NewTxOut constructs a TxOut from its parts.
func NewTxOut(amount uint64, scriptPubkey *script.Script) *TxOut {
	return &TxOut{
		Amount:       amount,
		ScriptPubkey: scriptPubkey,
	}
}

func (txOut *TxOut) String() string {
	return fmt.Sprintf("%s:%s", bitcoinutil.FormatWithUnderscore(int(txOut.Amount)), txOut.ScriptPubkey.String())
}

// ParseTxOut reads a TxOut from reader.
func ParseTxOut(reader *bufio.Reader) (*TxOut, error) {
	var amount uint64
	if err := binary.Read(reader, binary.LittleEndian, &amount); err != nil {
		return nil, bitcoinerrors.Parse(0, "reading amount: %v", err)
	}

	scriptPubkey, err := script.ParseScript(reader)
	if err != nil {
		return nil, err
	}

	return NewTxOut(amount, &scriptPubkey), nil
}

// Serialize encodes txOut in the wire format ParseTxOut reads.
func (txOut *TxOut) Serialize() ([]byte, error) {
	amountBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(amountBytes, txOut.Amount)

	scriptPubkeyBytes, err := txOut.ScriptPubkey.Serialize()
	if err != nil {
		return nil, err
	}

	return append(amountBytes, scriptPubkeyBytes...), nil
}
