package crypto

import (
	"encoding/base32"
)

// inviteCodeBytes gives invite codes 128 bits of entropy.
const inviteCodeBytes = 16

var inviteEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewInviteCode returns a random, URL-safe invite code.
func NewInviteCode() (string, error) {
	b, err := RandBytes(inviteCodeBytes)
	if err != nil {
		return "", err
	}
	return inviteEncoding.EncodeToString(b), nil
}
