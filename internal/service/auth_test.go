package service

import (
	"errors"
	"testing"
)

func TestVerifyAdmin(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	s := NewAuthService(hash)

	if err := s.VerifyAdmin("s3cret"); err != nil {
		t.Fatalf("valid password: %v", err)
	}
	if err := s.VerifyAdmin("wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if err := s.VerifyAdmin(""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if err := NewAuthService("").VerifyAdmin("s3cret"); !errors.Is(err, ErrAdminDisabled) {
		t.Fatalf("err = %v, want ErrAdminDisabled", err)
	}
}
