package lookups

import (
	"concordia-courses/apperror"
	"encoding/json"
	"strings"
)

// InteractionKind is a users vote on a review
type InteractionKind string

// InteractionKinds
const (
	KindLike    InteractionKind = "like"
	KindDislike InteractionKind = "dislike"
)

var interactionKinds = []InteractionKind{KindLike, KindDislike}

// ParseInteractionKind is case-insensitive
func ParseInteractionKind(s string) (InteractionKind, error) {
	for _, v := range interactionKinds {
		if strings.EqualFold(string(v), s) {
			return v, nil
		}
	}
	return "", apperror.ErrInvalidInteractionKind
}

// Text is the display string
func (k InteractionKind) Text() string {
	switch k {
	case KindLike:
		return "Like"
	case KindDislike:
		return "Dislike"
	}
	return ""
}

func (k InteractionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(k))
}

func (k *InteractionKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseInteractionKind(s)
	if err != nil {
		return err
	}
	*k = v
	return nil
}
