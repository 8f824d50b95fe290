package hwp5

import (
	"crypto/aes"
	"encoding/binary"
)

// distDataSize is the size of the obfuscated key block at the head of a
// distribution section stream.
const distDataSize = 256

// decryptDistribution strips the distribution record from the head of a
// ViewText section stream, derives the AES-128 key from its obfuscated
// payload and decrypts the remaining bytes in ECB mode.
//
// The derived key lives only on this call's stack; it is never stored,
// logged or included in error values. A DecryptionError means the
// key-derivation inputs themselves were missing or malformed — ciphertext
// of any length decrypts, with a trailing partial block handled by
// zero-padding to the block size and truncating the plaintext back.
func decryptDistribution(stream []byte) ([]byte, error) {
	if len(stream) < 4+distDataSize {
		return nil, &DecryptionError{Reason: "distribution stream too short for key block"}
	}

	headerRaw := binary.LittleEndian.Uint32(stream[:4])
	tag := uint16(headerRaw & 0x3ff)
	size := (headerRaw >> 20) & 0xfff
	if tag != tagDistributeDocData || size != distDataSize {
		return nil, &DecryptionError{
			Reason: "stream does not start with a distribution record",
		}
	}

	key, err := deriveKey(stream[4 : 4+distDataSize])
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, &DecryptionError{Reason: "cipher init failed"}
	}

	ciphertext := stream[4+distDataSize:]
	plaintext := make([]byte, len(ciphertext))
	bs := block.BlockSize()

	i := 0
	for ; i+bs <= len(ciphertext); i += bs {
		block.Decrypt(plaintext[i:i+bs], ciphertext[i:i+bs])
	}
	if rest := len(ciphertext) - i; rest > 0 {
		var blk [aes.BlockSize]byte
		copy(blk[:], ciphertext[i:])
		block.Decrypt(blk[:], blk[:])
		copy(plaintext[i:], blk[:rest])
	}
	return plaintext, nil
}

// deriveKey extracts the AES-128 key from the obfuscated distribution data:
// the first 4 bytes seed an MSVC rand() generator whose output, expanded
// into hold-count runs, is XORed over the block; the key sits at offset
// (seed & 0x0F) + 4 of the deobfuscated bytes.
func deriveKey(distData []byte) ([]byte, error) {
	if len(distData) != distDataSize {
		return nil, &DecryptionError{Reason: "invalid distribution data size"}
	}

	seed := binary.LittleEndian.Uint32(distData[0:4])

	gen := &msvcRand{state: seed}
	randomArray := make([]byte, distDataSize)
	for i := 0; i < distDataSize; {
		val := gen.rand()
		cnt := gen.rand()

		v := byte(val & 0xFF)
		c := int((cnt & 0x0F) + 1)

		for j := 0; j < c && i < distDataSize; j++ {
			randomArray[i] = v
			i++
		}
	}

	offset := int((seed & 0x0F) + 4)
	key := make([]byte, 16)
	for i := 0; i < 16; i++ {
		key[i] = distData[offset+i] ^ randomArray[offset+i]
	}
	return key, nil
}

// msvcRand implements MS Visual C++ rand().
// Formula: next = previous * 214013 + 2531011
type msvcRand struct {
	state uint32
}

func (r *msvcRand) rand() uint32 {
	r.state = r.state*214013 + 2531011
	return (r.state >> 16) & 0x7FFF
}
