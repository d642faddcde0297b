package services

import "testing"

func TestValidWalletAddress(t *testing.T) {
	// 32 base58 '1' characters decode to a 32-byte zero key
	if !ValidWalletAddress("11111111111111111111111111111111") {
		t.Error("expected 32-byte base58 key to validate")
	}
	if ValidWalletAddress("") {
		t.Error("expected empty address to fail")
	}
	if ValidWalletAddress("not-base58-0OIl") {
		t.Error("expected non-base58 address to fail")
	}
	if ValidWalletAddress("abc") {
		t.Error("expected short key to fail")
	}
}

func TestWalletLoginCreatesUser(t *testing.T) {
	env := newTestEnv(t, 0)
	svc := NewAuthService(env.db)

	address := "11111111111111111111111111111111"
	user, err := svc.ProcessWalletLogin(address)
	if err != nil {
		t.Fatalf("ProcessWalletLogin failed: %v", err)
	}
	if user.Nickname == "" {
		t.Error("expected a generated nickname")
	}

	// Same wallet logs into the same account
	again, err := svc.ProcessWalletLogin(address)
	if err != nil {
		t.Fatalf("repeat login failed: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("expected same user id, got %d and %d", user.ID, again.ID)
	}
}
