package core

import "crypto/rand"

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const DefaultCodeLength = 4

// CodeGenerator produces short shareable lobby codes. Each position is
// drawn uniformly from the alphabet; callers retry on collision.
type CodeGenerator struct {
	length int
}

func NewCodeGenerator(length int) *CodeGenerator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return &CodeGenerator{length: length}
}

func (g *CodeGenerator) Generate() string {
	buf := make([]byte, g.length)
	for i := range buf {
		buf[i] = codeAlphabet[randIndex()]
	}
	return string(buf)
}

// randIndex rejection-samples a byte so every alphabet index is equally
// likely. 252 is the largest multiple of len(codeAlphabet) below 256.
func randIndex() int {
	var b [1]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			panic(err)
		}
		if b[0] < 252 {
			return int(b[0]) % len(codeAlphabet)
		}
	}
}
