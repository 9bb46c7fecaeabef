// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package objects

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rc4"
	"fmt"
	"io"
)

// padBytes is the fixed padding string PDF 32000-1 §7.6.3.3 uses to pad
// or truncate passwords to 32 bytes before hashing.
var padBytes = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41,
	0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80,
	0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// setupDecryption reads the /Encrypt dict's static parameters (the
// pieces that don't require a password) so that OpenEncrypted can later
// derive the file key. Only the empty-password path is exercised by
// Open itself; this module never attempts to crack unknown passwords.
func (d *Document) setupDecryption(enc object) error {
	ptr, isRef := enc.(objptr)
	var encPtr objptr
	if isRef {
		encPtr = ptr
	}
	v := d.resolve(objptr{}, enc)
	if v.Kind() != Dict {
		return fmt.Errorf("Encrypt is not a dict")
	}
	filter := v.Key("Filter").Name()
	if filter != "Standard" && filter != "" {
		return fmt.Errorf("unsupported security handler %q", filter)
	}
	_ = encPtr
	return d.deriveKey("")
}

// deriveKey computes the RC4/AES file key from the /Encrypt dictionary
// and the supplied password (empty string for the common "owner-only
// protected, no user password" case), per Algorithm 2 of the PDF spec.
func (d *Document) deriveKey(password string) error {
	encV := d.resolve(objptr{}, d.trailer[name("Encrypt")])
	if encV.Kind() != Dict {
		return fmt.Errorf("no Encrypt dictionary")
	}
	v, _ := encV.Key("V").data.(int64)
	r, _ := encV.Key("R").data.(int64)
	o := []byte(encV.Key("O").RawString())
	p, _ := encV.Key("P").data.(int64)
	length := encV.Key("Length").Int64()
	if length == 0 {
		length = 40
	}
	keyLenBytes := int(length / 8)

	idArr := d.trailer[name("ID")]
	var id0 []byte
	if idv, ok := idArr.(array); ok && len(idv) > 0 {
		id0 = []byte(d.resolve(objptr{}, idv[0]).RawString())
	}

	pw := padPassword(password)
	h := md5.New()
	h.Write(pw)
	h.Write(o)
	var pbuf [4]byte
	pbuf[0] = byte(p)
	pbuf[1] = byte(p >> 8)
	pbuf[2] = byte(p >> 16)
	pbuf[3] = byte(p >> 24)
	h.Write(pbuf[:])
	h.Write(id0)
	if r >= 4 {
		encMeta := true
		if encV.Has("EncryptMetadata") {
			encMeta = encV.Key("EncryptMetadata").Bool()
		}
		if !encMeta {
			h.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})
		}
	}
	sum := h.Sum(nil)
	if r >= 3 {
		for i := 0; i < 50; i++ {
			sum2 := md5.Sum(sum[:keyLenBytes])
			sum = sum2[:]
		}
	}
	if keyLenBytes > len(sum) {
		keyLenBytes = len(sum)
	}
	d.key = sum[:keyLenBytes]

	useAES := false
	if v >= 4 {
		cf := encV.Key("CF")
		stmF := encV.Key("StmF").Name()
		if cf.Kind() == Dict && stmF != "" && stmF != "Identity" {
			cfm := cf.Key(stmF).Key("CFM").Name()
			useAES = cfm == "AESV2" || cfm == "AESV3"
		}
	}
	d.useAES = useAES
	return nil
}

func padPassword(pw string) []byte {
	b := []byte(pw)
	if len(b) >= 32 {
		return b[:32]
	}
	out := make([]byte, 32)
	n := copy(out, b)
	copy(out[n:], padBytes)
	return out
}

// objectKey derives the per-object RC4/AES key from the file key and the
// object's id/generation, per PDF spec Algorithm 1.
func objectKey(fileKey []byte, useAES bool, ptr objptr) []byte {
	h := md5.New()
	h.Write(fileKey)
	h.Write([]byte{byte(ptr.id), byte(ptr.id >> 8), byte(ptr.id >> 16)})
	h.Write([]byte{byte(ptr.gen), byte(ptr.gen >> 8)})
	if useAES {
		h.Write([]byte("sAlT"))
	}
	sum := h.Sum(nil)
	n := len(fileKey) + 5
	if n > 16 {
		n = 16
	}
	return sum[:n]
}

// decryptString decrypts a literal or hex string token read while
// tokenizing an encrypted object body.
func decryptString(fileKey []byte, useAES bool, ptr objptr, s string) string {
	key := objectKey(fileKey, useAES, ptr)
	data := []byte(s)
	if useAES {
		out, err := aesCBCDecrypt(key, data)
		if err != nil {
			return s
		}
		return string(out)
	}
	c, err := rc4.NewCipher(key)
	if err != nil {
		return s
	}
	out := make([]byte, len(data))
	c.XORKeyStream(out, data)
	return string(out)
}

func aesCBCDecrypt(key, data []byte) ([]byte, error) {
	if len(data) < aes.BlockSize {
		return nil, fmt.Errorf("aes: ciphertext too short")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	iv := data[:aes.BlockSize]
	ct := data[aes.BlockSize:]
	if len(ct)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("aes: ciphertext not block-aligned")
	}
	out := make([]byte, len(ct))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(out, ct)
	if n := len(out); n > 0 {
		pad := int(out[n-1])
		if pad > 0 && pad <= aes.BlockSize && pad <= n {
			out = out[:n-pad]
		}
	}
	return out, nil
}

// decryptReader wraps a stream's raw section reader with RC4 or AES-CBC
// decryption keyed to the containing object.
type decryptReader struct {
	r io.Reader
}

func newDecryptReader(fileKey []byte, useAES bool, ptr objptr, sr io.Reader) io.Reader {
	raw, err := io.ReadAll(sr)
	if err != nil {
		return bytes.NewReader(nil)
	}
	key := objectKey(fileKey, useAES, ptr)
	if useAES {
		out, err := aesCBCDecrypt(key, raw)
		if err != nil {
			return bytes.NewReader(nil)
		}
		return bytes.NewReader(out)
	}
	c, err := rc4.NewCipher(key)
	if err != nil {
		return bytes.NewReader(nil)
	}
	out := make([]byte, len(raw))
	c.XORKeyStream(out, raw)
	return bytes.NewReader(out)
}
