// Package qcrypto implements the QCC chain's request signing scheme: ed25519
// signatures over a time-prefixed double-SHA256 transaction hash, with
// RIPEMD160-based account addresses.
package qcrypto

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/ripemd160"
)

const hexTimeSize = 14

var privateKeyPattern = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)

// KeyValid reports whether s is a well-formed 32-byte hex private key seed.
func KeyValid(s string) bool {
	return privateKeyPattern.MatchString(s)
}

// UTime returns the chain's microsecond timestamp for now.
func UTime() int64 {
	return time.Now().UnixMilli() * 1000
}

// hexTime renders a microsecond timestamp as the chain's 14-hex-char prefix.
func hexTime(utime int64) string {
	s := fmt.Sprintf("%014x", utime)
	if len(s) > hexTimeSize {
		s = s[:hexTimeSize]
	}
	return s
}

// escapeJSON quotes s the way the chain canonicalizes strings: JSON string
// escaping plus forward slashes escaped as \/.
func escapeJSON(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '/':
			b.WriteString(`\/`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r > 0xff {
				b.WriteString(fmt.Sprintf(`\u%04x`, r))
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func ripemd160Hex(s string) string {
	h := ripemd160.New()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// checksum is the first 4 hex chars of the double SHA256 of h.
func checksum(h string) string {
	return sha256Hex(sha256Hex(h))[:4]
}

// PublicKey derives the hex public key from a hex private key seed.
func PublicKey(privateKeyHex string) (string, error) {
	if !KeyValid(privateKeyHex) {
		return "", fmt.Errorf("invalid private key")
	}
	seed, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return "", err
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return hex.EncodeToString(priv.Public().(ed25519.PublicKey)), nil
}

// Address derives the chain address for a hex public key:
// RIPEMD160(SHA256(pub)) plus a 4-char checksum.
func Address(publicKeyHex string) string {
	short := ripemd160Hex(sha256Hex(publicKeyHex))
	return short + checksum(short)
}

// SendTransaction is the canonical Send payload. Field order matters: the
// signature covers the serialized form in exactly this order.
type SendTransaction struct {
	Type      string `json:"type"`
	To        string `json:"to"`
	Amount    string `json:"amount"`
	Timestamp int64  `json:"timestamp"`
	From      string `json:"from"`
}

func (t *SendTransaction) canonical() string {
	return fmt.Sprintf(`{"type":%s,"to":%s,"amount":%s,"timestamp":%d,"from":%s}`,
		escapeJSON(t.Type), escapeJSON(t.To), escapeJSON(t.Amount), t.Timestamp, escapeJSON(t.From))
}

// Hash returns the chain transaction hash: the hex timestamp prefix followed
// by SHA256(SHA256(canonical tx)).
func (t *SendTransaction) Hash() string {
	return hexTime(t.Timestamp) + sha256Hex(sha256Hex(t.canonical()))
}

// SignedSendRequest is the broadcast request body.
type SignedSendRequest struct {
	PublicKey   string           `json:"public_key"`
	Signature   string           `json:"signature"`
	Transaction *SendTransaction `json:"transaction"`
}

// BuildSendRequest assembles and signs a Send transaction. amount is the
// integer base-unit amount as a decimal string; timestamp is the chain's
// microsecond time (usually fetched from the node).
func BuildSendRequest(privateKeyHex, to, amount string, timestamp int64) (*SignedSendRequest, error) {
	pub, err := PublicKey(privateKeyHex)
	if err != nil {
		return nil, err
	}
	seed, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, err
	}
	priv := ed25519.NewKeyFromSeed(seed)

	tx := &SendTransaction{
		Type:      "Send",
		To:        to,
		Amount:    amount,
		Timestamp: timestamp,
		From:      Address(pub),
	}

	sig := ed25519.Sign(priv, []byte(tx.Hash()))

	return &SignedSendRequest{
		PublicKey:   pub,
		Signature:   hex.EncodeToString(sig),
		Transaction: tx,
	}, nil
}
