package session

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fluxynet/blog/internal/auth"
)

const recordVersion = 1

// record is the stored form of a User. The version lets a rolling deploy
// reject values written by a binary with a different layout.
type record struct {
	Version   int    `json:"v"`
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func encodeUser(u auth.User) ([]byte, error) {
	return json.Marshal(record{
		Version:   recordVersion,
		ID:        u.ID,
		Login:     u.Login,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	})
}

func decodeUser(data []byte) (auth.User, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var r record
	if err := dec.Decode(&r); err != nil {
		return auth.User{}, err
	}
	if dec.More() {
		return auth.User{}, fmt.Errorf("trailing data after record")
	}
	if r.Version != recordVersion {
		return auth.User{}, fmt.Errorf("unsupported record version %d", r.Version)
	}

	return auth.User{
		ID:        r.ID,
		Login:     r.Login,
		Name:      r.Name,
		AvatarURL: r.AvatarURL,
	}, nil
}
