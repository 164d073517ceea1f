package auth

import "testing"

func TestHashPassword_KnownVector(t *testing.T) {
	// sha256("password"), lowercase hex
	want := "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8"
	if got := HashPassword("password"); got != want {
		t.Errorf("HashPassword(\"password\") = %s, want %s", got, want)
	}
}

func TestHashPassword_Length(t *testing.T) {
	if got := HashPassword(""); len(got) != 64 {
		t.Errorf("digest length = %d, want 64", len(got))
	}
}

func TestVerifyPassword(t *testing.T) {
	digest := HashPassword("hunter2")
	if !VerifyPassword(digest, "hunter2") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(digest, "hunter3") {
		t.Error("wrong password accepted")
	}
	if VerifyPassword("", "hunter2") {
		t.Error("empty digest accepted")
	}
}
