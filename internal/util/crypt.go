package util

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	base64Prefix  = "b64:"
	encryptPrefix = "enc:"
)

// AES 복호화 함수
func Decrypt(key []byte, cryptoText string) (string, error) {
	ciphertext, err := hex.DecodeString(cryptoText)
	if err != nil {
		return "", fmt.Errorf("invalid hex ciphertext: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	if len(ciphertext) < aes.BlockSize {
		return "", errors.New("ciphertext too short")
	}

	iv := ciphertext[:aes.BlockSize]
	ciphertext = ciphertext[aes.BlockSize:]

	stream := cipher.NewCFBDecrypter(block, iv)
	stream.XORKeyStream(ciphertext, ciphertext)

	return string(ciphertext), nil
}

// Encrypt function corresponding to decrypt
func Encrypt(key []byte, plaintext string) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	// Generate a random IV (Initialization Vector)
	ciphertext := make([]byte, aes.BlockSize+len(plaintext))
	iv := ciphertext[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	// Encrypt using CFB mode
	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], []byte(plaintext))

	// Convert to hex string
	return hex.EncodeToString(ciphertext), nil
}

/*
memo. 설정 파일의 비밀 값 표기
  - "b64:<base64>" : base64 디코딩
  - "enc:<hex>"    : key로 AES 복호화. key가 비어 있으면 오류
  - 그 외          : 평문 그대로
*/
func Decode(target *string, key string) error {

	v := *target
	switch {
	case strings.HasPrefix(v, base64Prefix):
		d, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(v, base64Prefix))
		if err != nil {
			return fmt.Errorf("base64 디코딩 실패. %w", err)
		}
		*target = string(d)
	case strings.HasPrefix(v, encryptPrefix):
		if key == "" {
			return errors.New("복호화 키 미존재")
		}
		d, err := Decrypt([]byte(key), strings.TrimPrefix(v, encryptPrefix))
		if err != nil {
			return fmt.Errorf("복호화 실패. %w", err)
		}
		*target = d
	}
	return nil
}
