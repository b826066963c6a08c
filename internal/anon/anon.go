// Package anon derives the stable pseudonyms shown in place of authors who
// chose to post anonymously.
//
// A pseudonym is an HMAC-SHA256 of "userID:opinionID" keyed with a server
// secret. It is stable for one user inside one discussion, so their anonymous
// replies share an avatar, and it differs between discussions.
package anon

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// DisplayName replaces the username of every anonymous record.
const DisplayName = "Anonymous"

// PseudoIDLength is the number of hex characters kept from the HMAC.
const PseudoIDLength = 16

// Author is the public face of a record's author.
type Author struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

type Pseudonymizer struct {
	secret []byte
}

func New(secret string) *Pseudonymizer {
	return &Pseudonymizer{secret: []byte(secret)}
}

// Anonymize returns the pseudo-id of userID inside the discussion of opinionID.
func (p *Pseudonymizer) Anonymize(userID, opinionID string) string {
	h := hmac.New(sha256.New, p.secret)
	h.Write([]byte(userID))
	h.Write([]byte{':'})
	h.Write([]byte(opinionID))
	return hex.EncodeToString(h.Sum(nil))[:PseudoIDLength]
}

// Mask builds the author shown for a comment. The real identity is returned
// untouched unless anonymous is set.
func (p *Pseudonymizer) Mask(userID, username, opinionID string, anonymous bool) Author {
	if anonymous {
		return Author{ID: p.Anonymize(userID, opinionID), Username: DisplayName}
	}
	return Author{ID: userID, Username: username}
}
