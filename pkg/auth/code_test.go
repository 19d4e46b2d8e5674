package auth

import (
	"testing"
	"unicode"
)

func TestGenerateCodeLengthAndCharset(t *testing.T) {
	t.Parallel()

	for _, length := range []int{4, 6, 8} {
		code, err := GenerateCode(length)
		if err != nil {
			t.Fatalf("GenerateCode(%d): %v", length, err)
		}
		if len(code) != length {
			t.Errorf("GenerateCode(%d) length = %d", length, len(code))
		}
		for _, r := range code {
			if !unicode.IsDigit(r) {
				t.Errorf("GenerateCode(%d) = %q, want digits only", length, code)
				break
			}
		}
	}
}

func TestGenerateCodeDefaultLength(t *testing.T) {
	t.Parallel()

	for _, length := range []int{0, -3} {
		code, err := GenerateCode(length)
		if err != nil {
			t.Fatalf("GenerateCode(%d): %v", length, err)
		}
		if len(code) != 6 {
			t.Errorf("GenerateCode(%d) length = %d, want the default 6", length, len(code))
		}
	}
}

func TestHashCodeAndCheck(t *testing.T) {
	t.Parallel()

	hash, err := HashCode("482913")
	if err != nil {
		t.Fatalf("HashCode: %v", err)
	}

	if hash == "482913" {
		t.Error("hash must not equal the plain code")
	}
	if !CheckCode("482913", hash) {
		t.Error("CheckCode should accept the original code")
	}
	if CheckCode("000000", hash) {
		t.Error("CheckCode should reject a different code")
	}
	if CheckCode("482913", "not-a-bcrypt-hash") {
		t.Error("CheckCode should reject a malformed hash")
	}
}
