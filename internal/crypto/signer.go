// Package crypto provides key management and EIP-712 order signing for the
// hedging execution engine.
package crypto

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/calverly/hedger/internal/domain"
)

// --------------------------------------------------------------------------
// EIP-712 type hashes (pre-computed keccak256 of the canonical type strings).
// The field order and integer widths are fixed by the exchange protocol; any
// deviation produces a signature the venue rejects.
// --------------------------------------------------------------------------

var (
	// EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)
	eip712DomainTypeHash = ethcrypto.Keccak256(
		[]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"),
	)

	// Order(address maker,address taker,uint256 tokenId,uint256 price,uint256 amount,uint256 expiration,bytes32 salt,uint8 side,uint256 feeRateBps)
	orderTypeHash = ethcrypto.Keccak256(
		[]byte("Order(address maker,address taker,uint256 tokenId,uint256 price,uint256 amount,uint256 expiration,bytes32 salt,uint8 side,uint256 feeRateBps)"),
	)
)

// zeroAddress is the taker for open orders.
var zeroAddress = common.Address{}

// DomainParams are the EIP-712 domain separator inputs supplied by static
// configuration.
type DomainParams struct {
	Name              string
	Version           string
	ChainID           int
	VerifyingContract string
}

// Signer produces EIP-712 signatures over CLOB order payloads. The private
// key lives only inside the Signer; it is never logged or persisted.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
	domainSep  []byte // cached domain separator hash
}

// NewSigner creates a Signer from a hex-encoded secp256k1 private key and the
// exchange domain parameters.
func NewSigner(privateKeyHex string, dom DomainParams) (*Signer, error) {
	keyHex := strings.TrimPrefix(privateKeyHex, "0x")
	pk, err := ethcrypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("crypto/signer: %w: invalid private key: %v", domain.ErrSigning, err)
	}

	if !common.IsHexAddress(dom.VerifyingContract) {
		return nil, fmt.Errorf("crypto/signer: %w: invalid verifying contract %q", domain.ErrSigning, dom.VerifyingContract)
	}

	s := &Signer{
		privateKey: pk,
		address:    ethcrypto.PubkeyToAddress(pk.PublicKey),
	}
	s.domainSep = buildDomainSeparator(dom)

	return s, nil
}

// Address returns the maker address derived from the signing key.
func (s *Signer) Address() common.Address {
	return s.address
}

// SignOrder signs an order body and returns the hex-encoded 65-byte
// signature (r || s || v).
func (s *Signer) SignOrder(body domain.OrderBody) (string, error) {
	structHash, err := orderStructHash(body)
	if err != nil {
		return "", err
	}

	digest := eip712Hash(s.domainSep, structHash)

	sig, err := ethcrypto.Sign(digest, s.privateKey)
	if err != nil {
		return "", fmt.Errorf("crypto/signer: %w: %v", domain.ErrSigning, err)
	}

	// go-ethereum returns v in {0,1}; EIP-712 expects v in {27,28}.
	if sig[64] < 27 {
		sig[64] += 27
	}

	return "0x" + hex.EncodeToString(sig), nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// buildDomainSeparator returns
// keccak256(abi.encode(typeHash, nameHash, versionHash, chainId, verifyingContract)).
func buildDomainSeparator(dom DomainParams) []byte {
	verifier := common.HexToAddress(dom.VerifyingContract)
	return ethcrypto.Keccak256(
		concatBytes(
			eip712DomainTypeHash,
			ethcrypto.Keccak256([]byte(dom.Name)),
			ethcrypto.Keccak256([]byte(dom.Version)),
			bigIntTo32Bytes(big.NewInt(int64(dom.ChainID))),
			common.LeftPadBytes(verifier.Bytes(), 32),
		),
	)
}

// eip712Hash computes the final EIP-712 digest:
//
//	keccak256("\x19\x01" || domainSeparator || structHash)
func eip712Hash(domainSep, structHash []byte) []byte {
	return ethcrypto.Keccak256(
		concatBytes(
			[]byte{0x19, 0x01},
			domainSep,
			structHash,
		),
	)
}

// orderStructHash encodes and hashes an OrderBody according to EIP-712.
func orderStructHash(o domain.OrderBody) ([]byte, error) {
	if !common.IsHexAddress(o.Maker) {
		return nil, fmt.Errorf("crypto/signer: %w: invalid maker address %q", domain.ErrSigning, o.Maker)
	}
	maker := common.HexToAddress(o.Maker)

	tokenID, ok := new(big.Int).SetString(o.TokenID, 10)
	if !ok {
		return nil, fmt.Errorf("crypto/signer: %w: invalid tokenId %q", domain.ErrSigning, o.TokenID)
	}
	price, ok := new(big.Int).SetString(o.Price, 10)
	if !ok {
		return nil, fmt.Errorf("crypto/signer: %w: invalid price %q", domain.ErrSigning, o.Price)
	}
	amount, ok := new(big.Int).SetString(o.Size, 10)
	if !ok {
		return nil, fmt.Errorf("crypto/signer: %w: invalid size %q", domain.ErrSigning, o.Size)
	}

	salt, err := saltTo32Bytes(o.Salt)
	if err != nil {
		return nil, err
	}

	return ethcrypto.Keccak256(
		concatBytes(
			orderTypeHash,
			common.LeftPadBytes(maker.Bytes(), 32),
			common.LeftPadBytes(zeroAddress.Bytes(), 32),
			bigIntTo32Bytes(tokenID),
			bigIntTo32Bytes(price),
			bigIntTo32Bytes(amount),
			bigIntTo32Bytes(big.NewInt(o.Expiration)),
			salt,
			bigIntTo32Bytes(big.NewInt(int64(o.Side))),
			bigIntTo32Bytes(big.NewInt(int64(o.FeeRateBps))),
		),
	), nil
}

// saltTo32Bytes decodes the hex salt and right-pads it to a bytes32 value,
// matching ABI fixed-bytes encoding.
func saltTo32Bytes(salt string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(salt, "0x"))
	if err != nil || len(raw) == 0 || len(raw) > 32 {
		return nil, fmt.Errorf("crypto/signer: %w: invalid salt %q", domain.ErrSigning, salt)
	}
	padded := make([]byte, 32)
	copy(padded, raw)
	return padded, nil
}

// bigIntTo32Bytes returns a 32-byte big-endian representation of n.
func bigIntTo32Bytes(n *big.Int) []byte {
	b := n.Bytes()
	if len(b) >= 32 {
		return b[:32]
	}
	padded := make([]byte, 32)
	copy(padded[32-len(b):], b)
	return padded
}

// concatBytes concatenates multiple byte slices into one.
func concatBytes(slices ...[]byte) []byte {
	total := 0
	for _, s := range slices {
		total += len(s)
	}
	buf := make([]byte, 0, total)
	for _, s := range slices {
		buf = append(buf, s...)
	}
	return buf
}
