package services

import (
	"strings"
	"testing"
)

func TestGenerateInviteCode(t *testing.T) {
	svc := &FamilyService{}

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := svc.generateInviteCode()
		if err != nil {
			t.Fatalf("generateInviteCode() error = %v", err)
		}
		if len(code) != inviteCodeLength {
			t.Fatalf("len(code) = %d, want %d", len(code), inviteCodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(inviteCodeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}

	// 50 draws from a 32^8 space colliding would point at a broken generator
	if len(seen) < 2 {
		t.Error("expected distinct invite codes across draws")
	}
}
