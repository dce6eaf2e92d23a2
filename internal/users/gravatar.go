package users

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
)

const gravatarBaseURL = "https://www.gravatar.com/avatar/"

// GravatarURL returns the 200px, pg-rated Gravatar for email, falling back to the
// "mystery person" silhouette when the address has no avatar.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(NormalizeEmail(email)))
	params := url.Values{}
	params.Set("s", "200")
	params.Set("r", "pg")
	params.Set("d", "mm")
	return gravatarBaseURL + hex.EncodeToString(sum[:]) + "?" + params.Encode()
}
